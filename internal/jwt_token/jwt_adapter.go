package jwttoken

import (
	authmw "agency/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *VisitorClaims) *authmw.VisitorClaims {
	return &authmw.VisitorClaims{
		VisitorID: claims.VisitorID,
		JTI:       claims.ID,
	}
}

// JWTServiceAdapter lets the auth middleware validate tokens without
// importing this package.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.VisitorClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
