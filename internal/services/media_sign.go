package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrMediaNotConfigured is returned when the Cloudinary credentials are
// missing from the environment.
var ErrMediaNotConfigured = errors.New("media signing not configured")

// UploadSignature is everything the SPA needs for a direct
// client-to-Cloudinary upload. The server never sees the binary.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
}

// CloudinaryService signs direct-upload requests.
type CloudinaryService struct {
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) *CloudinaryService {
	return &CloudinaryService{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

// SignUpload produces the signed payload for an upload into folder.
// Cloudinary's contract: SHA-1 over the alphabetically sorted
// key=value pairs joined by "&", with the API secret appended.
func (s *CloudinaryService) SignUpload(folder string) (*UploadSignature, error) {
	if s.cloudName == "" || s.apiKey == "" || s.apiSecret == "" {
		return nil, ErrMediaNotConfigured
	}

	if folder == "" {
		folder = "user-uploads"
	}

	timestamp := s.now().Unix()
	params := map[string]string{
		"folder":    folder,
		"timestamp": fmt.Sprintf("%d", timestamp),
	}

	return &UploadSignature{
		Signature: signParams(params, s.apiSecret),
		Timestamp: timestamp,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
		Folder:    folder,
	}, nil
}

func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
