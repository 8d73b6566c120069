package providerhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/greenmart/storefront/internal/domain/payment"
)

// Verifier checks provider webhook signatures of the form
// "t=<unix>,v1=<hex hmac>" where the MAC is HMAC-SHA256 over
// "<unix>.<payload>" keyed with the shared secret. Stale timestamps outside
// the tolerance window are rejected to blunt replay.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

func (v *Verifier) Verify(payload []byte, header string) error {
	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(expected, got) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func parseHeader(header string) (ts int64, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", domain.ErrInvalidSignature)
			}
		case "v1":
			sig = value
		}
	}
	if ts == 0 || sig == "" {
		return 0, "", fmt.Errorf("%w: missing signature elements", domain.ErrInvalidSignature)
	}
	return ts, sig, nil
}

// Parse decodes the provider's event envelope.
func (v *Verifier) Parse(payload []byte) (domain.ProviderEvent, error) {
	return ParseEvent(payload)
}

// ParseEvent decodes the provider's event envelope.
func ParseEvent(payload []byte) (domain.ProviderEvent, error) {
	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string `json:"id"`
				TransactionID string `json:"transaction_id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.ProviderEvent{}, fmt.Errorf("providerhook: decode event: %w", err)
	}
	return domain.ProviderEvent{
		ID:            envelope.ID,
		Type:          envelope.Type,
		IntentID:      envelope.Data.Object.ID,
		TransactionID: envelope.Data.Object.TransactionID,
	}, nil
}
