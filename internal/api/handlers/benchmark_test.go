package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/secretstuffs/internal/api/dto"
	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/database/models"
)

// BenchmarkJSONSerialization benchmarks encoding of the response envelopes
func BenchmarkJSONSerialization(b *testing.B) {
	b.Run("ErrorResponse", func(b *testing.B) {
		resp := dto.NewError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
		resp.Errors = map[string]string{
			"email":    "Email format is invalid",
			"password": "Password must be at least 8 characters",
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("UserResponse", func(b *testing.B) {
		user := models.User{
			Email:           "alice@example.com",
			FirstName:       "Alice",
			LastName:        "Liddell",
			ProfileImageURL: "https://cdn.example.com/avatars/1/a.png",
			Active:          true,
		}
		resp := dto.NewResponse(http.StatusOK, MsgUserFetched, dto.NewUserDTO(&user))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})
}

// BenchmarkRequestParsing benchmarks decoding and validating a registration body
func BenchmarkRequestParsing(b *testing.B) {
	body := []byte(`{"first_name":"Alice","last_name":"Liddell","email":"alice@example.com","password":"p@ssw0rd!"}`)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
		var parsed dto.RegisterRequest
		_ = decodeJSON(req, &parsed)
		parsed.Normalize()
		_ = parsed.Validate()
	}
}

// BenchmarkWriteError benchmarks the sentinel to status mapping
func BenchmarkWriteError(b *testing.B) {
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	errs := []error{
		auth.ErrInvalidCredentials,
		auth.ErrUserNotVerified,
		auth.ErrExpiredToken,
		errors.Join(auth.ErrInfrastructure, errors.New("connection refused")),
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		writeError(httptest.NewRecorder(), req, errs[i%len(errs)])
	}
}

// BenchmarkPaginationParams benchmarks pagination normalization
func BenchmarkPaginationParams(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := dto.PaginationParams{Page: i % 5, PerPage: i % 150}
		p.Normalize()
		_ = p.TotalPages(1234)
	}
}
