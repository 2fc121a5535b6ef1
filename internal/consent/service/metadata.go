package service

import (
	"context"
	"encoding/hex"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/blake2b"

	"agency/internal/consent/models"
	"agency/pkg/requestcontext"
)

// recordMetadata describes the client behind ctx. The raw IP never leaves
// this function; only a keyed hash is kept.
func (s *Service) recordMetadata(ctx context.Context) models.RecordMetadata {
	md := models.RecordMetadata{Source: s.source}

	if raw := requestcontext.UserAgent(ctx); raw != "" {
		ua := useragent.New(raw)
		if ua.Bot() {
			md.Browser = "bot"
		} else {
			md.Browser, _ = ua.Browser()
		}
		md.OS = ua.OSInfo().Name
		md.Mobile = ua.Mobile()
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		md.IPHash = s.hashIP(ip)
	}
	return md
}

func (s *Service) hashIP(ip string) string {
	h, err := blake2b.New256(s.ipHashKey)
	if err != nil {
		// keys over 64 bytes are rejected; fall back to an unkeyed digest
		sum := blake2b.Sum256([]byte(ip))
		return hex.EncodeToString(sum[:16])
	}
	_, _ = h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
