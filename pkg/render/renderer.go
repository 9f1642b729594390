package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Encoder names understood by the default registry.
const (
	EncoderHTML     = "html"
	EncoderSanitize = "sanitize"
	EncoderNone     = "none"
)

// Encoder converts an unencoded Text value into output-safe markup.
type Encoder interface {
	Name() string
	Encode(value string) string
}

// HTMLEncoder escapes the five HTML metacharacters.
type HTMLEncoder struct{}

// Name implements Encoder.
func (HTMLEncoder) Name() string { return EncoderHTML }

// Encode implements Encoder.
func (HTMLEncoder) Encode(value string) string {
	if !strings.ContainsAny(value, `<>&'"`) {
		return value
	}
	return html.EscapeString(value)
}

// NopEncoder passes values through unchanged.
type NopEncoder struct{}

// Name implements Encoder.
func (NopEncoder) Name() string { return EncoderNone }

// Encode implements Encoder.
func (NopEncoder) Encode(value string) string { return value }

// SanitizeEncoder strips markup that is not allowed by a bluemonday policy,
// keeping a safe subset of user-generated HTML.
type SanitizeEncoder struct {
	policy *bluemonday.Policy
}

// NewSanitizeEncoder wraps policy. A nil policy selects the shared UGC policy.
func NewSanitizeEncoder(policy *bluemonday.Policy) *SanitizeEncoder {
	if policy == nil {
		policy = ugcSanitizer()
	}
	return &SanitizeEncoder{policy: policy}
}

// Name implements Encoder.
func (e *SanitizeEncoder) Name() string { return EncoderSanitize }

// Encode implements Encoder.
func (e *SanitizeEncoder) Encode(value string) string {
	if value == "" {
		return ""
	}
	return e.policy.Sanitize(value)
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func ugcSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		ugcPolicy = policy
	})
	return ugcPolicy
}
