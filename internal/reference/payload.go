package reference

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

var decoders = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// EncodePayload is base64(JSON(reg)) using the raw URL-safe alphabet, which
// survives inside a Telegram /command.
func EncodePayload(reg *entity.Registration) (string, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal registration payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(body), nil
}

// DecodePayload accepts any base64 alphabet, padded or not. Anything that is
// not a JSON registration yields (nil, false).
func DecodePayload(s string) (*entity.Registration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	for _, enc := range decoders {
		raw, err := enc.DecodeString(s)
		if err != nil {
			continue
		}
		var reg entity.Registration
		if err := json.Unmarshal(raw, &reg); err != nil {
			continue
		}
		if reg.Name == "" && reg.Email == "" && reg.Reference == "" {
			continue
		}
		return &reg, true
	}

	return nil, false
}

// Signer appends a truncated HMAC-SHA256 tag to payloads. A Signer with an
// empty secret passes payloads through untouched.
type Signer struct {
	secret []byte
}

const tagSize = 16

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

func (s *Signer) Seal(payload string) string {
	if !s.Enabled() {
		return payload
	}
	return payload + "." + base64.RawURLEncoding.EncodeToString(s.tag(payload))
}

// Open returns the payload without its tag. With signing enabled, a missing
// or wrong tag fails.
func (s *Signer) Open(token string) (string, bool) {
	if !s.Enabled() {
		return token, true
	}

	dot := strings.LastIndex(token, ".")
	if dot <= 0 {
		return "", false
	}
	payload, rawTag := token[:dot], token[dot+1:]

	tag, err := base64.RawURLEncoding.DecodeString(rawTag)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(tag, s.tag(payload)) {
		return "", false
	}
	return payload, true
}

func (s *Signer) tag(payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)[:tagSize]
}

// Codec ties payload encoding and signing together.
type Codec struct {
	signer *Signer
}

func NewCodec(signer *Signer) *Codec {
	return &Codec{signer: signer}
}

func (c *Codec) Encode(reg *entity.Registration) (string, error) {
	payload, err := EncodePayload(reg)
	if err != nil {
		return "", err
	}
	return c.signer.Seal(payload), nil
}

func (c *Codec) Decode(token string) (*entity.Registration, bool) {
	payload, ok := c.signer.Open(strings.TrimSpace(token))
	if !ok {
		return nil, false
	}
	return DecodePayload(payload)
}

// Recover resolves a command argument. A full payload wins; otherwise the
// argument is parsed as a reference and complete is false.
func (c *Codec) Recover(arg string) (reg *entity.Registration, complete bool, err error) {
	if reg, ok := c.Decode(arg); ok {
		return reg, true, nil
	}

	parsed, err := Parse(arg)
	if err != nil {
		return nil, false, err
	}
	return parsed.Registration(), false, nil
}
