// Package vnpay builds signed redirect URLs for the VNPay payment
// gateway.  The gateway verifies an HMAC-SHA512 over a canonical query
// string, and the canonicalization is exact-match: keys sorted
// ascending, values query-escaped, empty values omitted.  Any
// reordering, extra or missing parameter, or encoding mismatch
// invalidates the signature on the gateway side.
package vnpay

import (
    "crypto/hmac"
    "crypto/sha512"
    "encoding/hex"
    "errors"
    "fmt"
    "net/url"
    "sort"
    "strings"
    "time"
)

// ErrSecretTooShort is returned by New when the shared hash secret is
// missing or shorter than minSecretLen bytes.  A weak secret would make
// every outbound signature forgeable.
var ErrSecretTooShort = errors.New("vnpay: hash secret missing or too short")

const minSecretLen = 16

// merchantZone is the gateway's merchant timezone (UTC+7).  Create and
// expire timestamps must be rendered in this zone or the gateway rejects
// the request as expired.
var merchantZone = time.FixedZone("UTC+7", 7*60*60)

// Config carries the merchant credentials and endpoints issued by the
// gateway.  It is loaded once at startup and injected here; nothing in
// this package reads globals.
type Config struct {
    TmnCode    string // merchant terminal code
    HashSecret string // shared HMAC secret
    PayURL     string // gateway payment endpoint
    ReturnURL  string // where the gateway redirects the customer back to
    OrderType  string // gateway order classification, e.g. "order-type"
}

// Client signs payment redirect requests.  now is injectable so tests
// can pin the create/expire timestamps; production callers get
// time.Now.
type Client struct {
    cfg Config
    now func() time.Time
}

// New validates the configuration and returns a Client.  It fails with
// ErrSecretTooShort rather than letting a misconfigured deployment emit
// unverifiable requests.
func New(cfg Config) (*Client, error) {
    if len(cfg.HashSecret) < minSecretLen {
        return nil, ErrSecretTooShort
    }
    if cfg.TmnCode == "" || cfg.PayURL == "" {
        return nil, errors.New("vnpay: tmn code and pay url are required")
    }
    return &Client{cfg: cfg, now: time.Now}, nil
}

// NewWithClock is New with an injected clock.  Tests use it to make the
// signed URL fully deterministic.
func NewWithClock(cfg Config, now func() time.Time) (*Client, error) {
    c, err := New(cfg)
    if err != nil {
        return nil, err
    }
    c.now = now
    return c, nil
}

// PaymentURL builds the signed redirect URL for one payment attempt.
//
// amount is in VND major units; the gateway convention scales it by 100
// on the wire.  txnRef must be unique per attempt; when empty one is
// synthesized as "{roomID}_{epochMillis}".  The result is a pure
// function of the inputs and the injected clock: callers must not retry
// with a mutated timestamp expecting the same reference to work — every
// retry is a new attempt with a new reference.
func (c *Client) PaymentURL(amount int64, orderInfo string, roomID uint64, txnRef, ipAddr string) string {
    created := c.now().In(merchantZone)
    if strings.TrimSpace(txnRef) == "" {
        txnRef = fmt.Sprintf("%d_%d", roomID, created.UnixMilli())
    }
    if ipAddr == "" {
        ipAddr = "127.0.0.1"
    }
    params := map[string]string{
        "vnp_Version":    "2.1.0",
        "vnp_Command":    "pay",
        "vnp_TmnCode":    c.cfg.TmnCode,
        "vnp_Amount":     fmt.Sprintf("%d", amount*100),
        "vnp_CurrCode":   "VND",
        "vnp_TxnRef":     txnRef,
        "vnp_OrderInfo":  orderInfo,
        "vnp_OrderType":  c.cfg.OrderType,
        "vnp_Locale":     "vn",
        "vnp_ReturnUrl":  c.cfg.ReturnURL,
        "vnp_IpAddr":     ipAddr,
        "vnp_CreateDate": created.Format("20060102150405"),
        "vnp_ExpireDate": created.Add(15 * time.Minute).Format("20060102150405"),
    }
    query := Canonicalize(params)
    sig := Sign(c.cfg.HashSecret, query)
    return c.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + sig
}

// Canonicalize serializes a parameter map into the gateway's canonical
// form: keys sorted lexicographically ascending, "k=v" pairs joined by
// "&", every value query-escaped, and keys with empty values omitted
// entirely.  The same string is both hashed and sent, so the two can
// never drift apart.
func Canonicalize(params map[string]string) string {
    keys := make([]string, 0, len(params))
    for k, v := range params {
        if v == "" {
            continue
        }
        keys = append(keys, k)
    }
    sort.Strings(keys)
    var b strings.Builder
    for i, k := range keys {
        if i > 0 {
            b.WriteByte('&')
        }
        b.WriteString(url.QueryEscape(k))
        b.WriteByte('=')
        b.WriteString(url.QueryEscape(params[k]))
    }
    return b.String()
}

// Sign computes the lowercase hex HMAC-SHA512 of the canonical string
// under the shared secret.
func Sign(secret, canonical string) string {
    mac := hmac.New(sha512.New, []byte(secret))
    mac.Write([]byte(canonical))
    return hex.EncodeToString(mac.Sum(nil))
}
