package handlers_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hugh/secretstuffs/internal/api/dto"
	"github.com/hugh/secretstuffs/internal/api/handlers"
	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/avatars"
	"github.com/hugh/secretstuffs/internal/database/models"
	"github.com/hugh/secretstuffs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresigner struct{}

func (stubPresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.s3.amazonaws.com/" + aws.ToString(params.Key) + "?X-Amz-Signature=sig",
		Method: http.MethodPut,
	}, nil
}

func TestUserHandler_Me(t *testing.T) {
	router, tc := setupTestRouter(t, nil)
	defer tc.Cleanup()

	t.Run("returns the caller", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/users/me", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp struct {
			Data dto.UserDTO `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.User.Email, resp.Data.Email)
		assert.Equal(t, tc.User.ID, resp.Data.ID)
	})

	t.Run("password hash never leaves the server", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/users/me", nil, tc.Token))
		assert.NotContains(t, rr.Body.String(), tc.User.PasswordHash)
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("requires a token", func(t *testing.T) {
		rr := serve(router, testutil.UnauthenticatedRequest(t, "GET", "/api/users/me", nil))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestUserHandler_GetAndList(t *testing.T) {
	router, tc := setupTestRouter(t, nil)
	defer tc.Cleanup()

	other := testutil.CreateTestUser(t, tc.DB, false)

	t.Run("get by email", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/users/"+other.Email, nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp struct {
			Data dto.UserDTO `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, other.Email, resp.Data.Email)
		assert.False(t, resp.Data.Active)
	})

	t.Run("unknown email", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/users/ghost@x.com", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("paginated list", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/users/?page=1&per_page=1", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp struct {
			Data struct {
				Items      []dto.UserDTO `json:"items"`
				Total      int64         `json:"total"`
				TotalPages int           `json:"total_pages"`
			} `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Len(t, resp.Data.Items, 1)
		assert.Equal(t, int64(2), resp.Data.Total)
		assert.Equal(t, 2, resp.Data.TotalPages)
	})
}

func TestUserHandler_Update(t *testing.T) {
	router, tc := setupTestRouter(t, nil)
	defer tc.Cleanup()

	t.Run("updates the profile", func(t *testing.T) {
		body := map[string]string{
			"first_name":        "  Alicia ",
			"last_name":         "Liddell",
			"profile_image_url": "https://cdn.example.com/a.png",
		}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/users/update", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", tc.User.Email).First(&user).Error)
		assert.Equal(t, "Alicia", user.FirstName)
		assert.Equal(t, "https://cdn.example.com/a.png", user.ProfileImageURL)
	})

	t.Run("rejects non-http image urls", func(t *testing.T) {
		body := map[string]string{"first_name": "A", "last_name": "B", "profile_image_url": "javascript:alert(1)"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/users/update", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unverified session is forbidden", func(t *testing.T) {
		token, _, err := tc.JWTService.IssueSession(tc.User.Email, false)
		require.NoError(t, err)

		body := map[string]string{"first_name": "A", "last_name": "B"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/users/update", body, token))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestUserHandler_ChangePassword(t *testing.T) {
	router, tc := setupTestRouter(t, nil)
	defer tc.Cleanup()

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{
			name:   "wrong old password",
			body:   map[string]string{"old_password": "nope-nope", "new_password": "n3w-passw0rd", "confirm_password": "n3w-passw0rd"},
			status: http.StatusBadRequest,
			code:   "INVALID_OLD_PASSWORD",
		},
		{
			name:   "confirmation mismatch",
			body:   map[string]string{"old_password": testutil.TestPassword, "new_password": "n3w-passw0rd", "confirm_password": "other-passw0rd"},
			status: http.StatusBadRequest,
			code:   "PASSWORDS_DO_NOT_MATCH",
		},
		{
			name:   "missing fields",
			body:   map[string]string{},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/users/change-password", tt.body, tc.Token))
			testutil.AssertStatus(t, rr, tt.status)

			var resp dto.ErrorResponse
			testutil.ParseJSONResponse(t, rr, &resp)
			assert.Equal(t, tt.code, resp.ErrorCode)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := map[string]string{"old_password": testutil.TestPassword, "new_password": "n3w-passw0rd", "confirm_password": "n3w-passw0rd"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/users/change-password", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var user models.User
		require.NoError(t, tc.DB.Where("email = ?", tc.User.Email).First(&user).Error)
		assert.True(t, auth.CheckPassword("n3w-passw0rd", user.PasswordHash))
	})
}

func TestUserHandler_Delete(t *testing.T) {
	router, tc := setupTestRouter(t, nil)
	defer tc.Cleanup()

	other := testutil.CreateTestUser(t, tc.DB, true)

	t.Run("cannot delete someone else", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "DELETE", "/api/users/delete/"+other.Email, nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("deletes own account", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "DELETE", "/api/users/delete/"+tc.User.Email, nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp apiResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, handlers.MsgUserDeleted, resp.Message)

		var count int64
		tc.DB.Model(&models.User{}).Where("email = ?", tc.User.Email).Count(&count)
		assert.Zero(t, count)
	})
}

func TestUserHandler_AvatarUpload(t *testing.T) {
	t.Run("disabled without a bucket", func(t *testing.T) {
		router, tc := setupTestRouter(t, nil)
		defer tc.Cleanup()

		body := map[string]string{"content_type": "image/png"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/users/me/avatar-upload", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})

	svc := avatars.NewWithPresigner(stubPresigner{}, "avatars", "https://cdn.example.com", 5*time.Minute, slog.Default())
	router, tc := setupTestRouter(t, svc)
	defer tc.Cleanup()

	t.Run("presigns an upload", func(t *testing.T) {
		body := map[string]string{"content_type": "image/png"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/users/me/avatar-upload", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp struct {
			Data avatars.Upload `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Data.UploadURL, "X-Amz-Signature")
		assert.Contains(t, resp.Data.PublicURL, "https://cdn.example.com/avatars/")
	})

	t.Run("rejects other content types", func(t *testing.T) {
		body := map[string]string{"content_type": "application/pdf"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/users/me/avatar-upload", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
