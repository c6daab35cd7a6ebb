package utils

import (
	"net"
	"net/http"
	"strings"
)

// RequesterMeta captures the network/client metadata recorded with
// every QR access attempt and used as a rate-limit key for OTP sends.
type RequesterMeta struct {
	IP        string
	UserAgent string
}

// GetRequesterMeta extracts the caller's IP and user agent from the request.
func GetRequesterMeta(r *http.Request) RequesterMeta {
	return RequesterMeta{
		IP:        detectIP(r),
		UserAgent: r.UserAgent(),
	}
}

// detectIP extracts the best IP address from typical headers or RemoteAddr.
func detectIP(r *http.Request) string {
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		for _, ip := range ips {
			cleanIP := strings.TrimSpace(ip)
			if isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	cfConnectingIP := r.Header.Get("CF-Connecting-IP")
	if cfConnectingIP != "" && isValidIP(cfConnectingIP) {
		return cfConnectingIP
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" && isValidIP(realIP) {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
