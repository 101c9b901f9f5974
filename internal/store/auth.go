package store

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5" // nolint:gosec // Content-MD5 is part of the API-Auth canonical string.
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const authScheme = "CyberWatch APIAuth-HMAC-SHA256"

// apiAuthTransport signs each outgoing request with the API-Auth HMAC scheme the Cyberwatch API expects.
//
// The signature covers the request date, so it sits below the retrying client to sign every attempt.
type apiAuthTransport struct {
	apiKey    string
	secretKey string
	next      http.RoundTripper
	now       func() time.Time
}

func newAPIAuthTransport(apiKey, secretKey string, next http.RoundTripper) *apiAuthTransport {
	return &apiAuthTransport{
		apiKey:    apiKey,
		secretKey: secretKey,
		next:      next,
		now:       time.Now,
	}
}

func (t *apiAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed := req.Clone(req.Context())

	var body []byte

	if req.Body != nil && req.Body != http.NoBody {
		var err error

		body, err = io.ReadAll(req.Body)
		req.Body.Close()

		if err != nil {
			return nil, errors.Wrap(err, "reading request body for signature")
		}

		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}

	contentMD5 := ""
	if len(body) > 0 {
		sum := md5.Sum(body) // nolint:gosec // see import
		contentMD5 = base64.StdEncoding.EncodeToString(sum[:])
	}

	date := t.now().UTC().Format(http.TimeFormat)
	contentType := signed.Header.Get("Content-Type")

	signed.Header.Set("Content-MD5", contentMD5)
	signed.Header.Set("Date", date)

	canonical := canonicalString(signed.Method, contentType, contentMD5, signed.URL.RequestURI(), date)
	signed.Header.Set("Authorization", fmt.Sprintf("%s %s:%s", authScheme, t.apiKey, sign(t.secretKey, canonical)))

	return t.next.RoundTrip(signed)
}

func canonicalString(method, contentType, contentMD5, requestURI, date string) string {
	return strings.Join([]string{strings.ToUpper(method), contentType, contentMD5, requestURI, date}, ",")
}

func sign(secretKey, canonical string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(canonical))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
