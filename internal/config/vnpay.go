package config

// This file loads the VNPay merchant credentials and endpoints.  The
// terminal code and hash secret are issued by the gateway; the return
// URL is where the gateway sends the customer after payment.  All of
// these are required — a deployment without them cannot sign requests,
// so startup fails fast instead of emitting unverifiable redirects.

import "github.com/larose/hotel-backoffice/internal/vnpay"

// LoadVNPay reads the gateway settings from environment variables and
// returns a vnpay.Config ready to hand to vnpay.New.
func LoadVNPay() vnpay.Config {
    return vnpay.Config{
        TmnCode:    must("VNPAY_TMN_CODE"),     // merchant terminal code
        HashSecret: must("VNPAY_HASH_SECRET"),  // shared HMAC secret
        PayURL:     must("VNPAY_PAY_URL"),      // gateway payment endpoint
        ReturnURL:  must("VNPAY_RETURN_URL"),   // post-payment redirect target
        OrderType:  getenvDefault("VNPAY_ORDER_TYPE", "order-type"),
    }
}
