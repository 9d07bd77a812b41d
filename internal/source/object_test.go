package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func TestNewObjectSource_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     ObjectConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: ObjectConfig{
				Endpoint:    "https://account.r2.cloudflarestorage.com",
				Region:      "auto",
				AccessKeyID: "access-key",
				SecretKey:   "secret-key",
				Bucket:      "directory",
				Key:         "guia.xlsx",
			},
			wantErr: false,
		},
		{
			name:    "missing bucket",
			cfg:     ObjectConfig{Key: "guia.xlsx"},
			wantErr: true,
		},
		{
			name:    "missing key",
			cfg:     ObjectConfig{Bucket: "directory"},
			wantErr: true,
		},
		{
			name:    "missing both",
			cfg:     ObjectConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := NewObjectSource(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewObjectSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if src.Name() != BackendObject {
				t.Errorf("Name() = %q, want %q", src.Name(), BackendObject)
			}
			if src.Ref() != "directory/guia.xlsx" {
				t.Errorf("Ref() = %q, want %q", src.Ref(), "directory/guia.xlsx")
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	respErr404 := &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
		Err:      errors.New("not found"),
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "no such key",
			err:  &types.NoSuchKey{},
			want: true,
		},
		{
			name: "not found type",
			err:  &types.NotFound{},
			want: true,
		},
		{
			name: "api error with NoSuchKey code",
			err:  &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"},
			want: true,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("get object: %w", &smithy.GenericAPIError{Code: "NotFound"}),
			want: true,
		},
		{
			name: "response error 404",
			err:  respErr404,
			want: true,
		},
		{
			name: "access denied",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimETag(t *testing.T) {
	t.Parallel()

	quoted := `"abc123"`
	if got := trimETag(&quoted); got != "abc123" {
		t.Errorf("trimETag() = %q, want %q", got, "abc123")
	}
	if got := trimETag(nil); got != "" {
		t.Errorf("trimETag(nil) = %q, want empty string", got)
	}
}
