package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign 对 query 签名并追加 signature 参数
// query 为空时返回 "signature=<hex(hmac(secret, ""))>"
func Sign(query, secret string) string {
	signature := hmacSHA256(query, secret)
	if query == "" {
		return "signature=" + signature
	}
	return query + "&signature=" + signature
}

// hmacSHA256 HMAC-SHA256签名，小写 hex
func hmacSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
