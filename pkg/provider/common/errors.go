// Package common provides shared utilities for AI provider implementations.
package common

import (
	"fmt"
	"strings"
)

// ProviderErrorContext contains provider-specific information for error enhancement.
type ProviderErrorContext struct {
	ProviderName      string // e.g., "Claude", "OpenAI"
	EnvVar            string // API key variable, defaults to <PROVIDER>_API_KEY
	APIKeysURL        string // URL to manage API keys
	StatusPageURL     string // URL to check API status
	BillingURL        string // URL for billing/usage (optional)
	AlternateProvider string // Alternative provider name for suggestions
}

// ErrorKind classifies provider API failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindRateLimit
	KindQuota
	KindTimeout
	KindNetwork
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate-limit"
	case KindQuota:
		return "quota"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Retryable reports whether a request failing this way may succeed when repeated
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimit, KindTimeout, KindNetwork, KindServer:
		return true
	default:
		return false
	}
}

// patterns are checked in order; the first match wins
var patterns = []struct {
	kind     ErrorKind
	keywords []string
}{
	{KindAuth, []string{"401", "unauthorized", "invalid api key"}},
	{KindRateLimit, []string{"429", "rate limit"}},
	{KindQuota, []string{"insufficient_quota", "quota"}},
	{KindTimeout, []string{"timeout", "deadline exceeded"}},
	{KindNetwork, []string{"connection", "network", "dial"}},
	{KindServer, []string{"500", "502", "503"}},
}

// Classify detects the kind of an API error from its message
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	msg := err.Error()
	for _, p := range patterns {
		for _, kw := range p.keywords {
			if contains(msg, kw) {
				return p.kind
			}
		}
	}
	return KindUnknown
}

// EnhanceAPIError adds helpful context to AI provider API errors.
// It detects common error patterns and provides actionable troubleshooting steps.
func EnhanceAPIError(err error, ctx ProviderErrorContext) error {
	switch Classify(err) {
	case KindAuth:
		envVar := ctx.EnvVar
		if envVar == "" {
			envVar = strings.ToUpper(ctx.ProviderName) + "_API_KEY"
		}
		return fmt.Errorf("%s API authentication failed: %w\n\n"+
			"Possible causes:\n"+
			"  - Invalid or expired API key\n"+
			"  - API key revoked or deleted\n\n"+
			"To fix:\n"+
			"  1. Verify your API key at: %s\n"+
			"  2. Ensure %s is set correctly\n"+
			"  3. Try generating a new API key", ctx.ProviderName, err, ctx.APIKeysURL, envVar)

	case KindRateLimit:
		return fmt.Errorf("%s API rate limit exceeded: %w\n\n"+
			"You've made too many requests in a short period.\n\n"+
			"To fix:\n"+
			"  1. Wait a few minutes and try again\n"+
			"  2. Explain fewer rules per run with --max-rules\n"+
			"  3. Upgrade your %s API plan for higher limits", ctx.ProviderName, err, ctx.ProviderName)

	case KindQuota:
		steps := "  1. Check your usage and add credits if needed\n" +
			"  2. Upgrade your plan for higher limits"
		if ctx.BillingURL != "" {
			steps = fmt.Sprintf("  1. Add credits: %s\n"+
				"  2. Upgrade your plan for higher limits", ctx.BillingURL)
		}
		if ctx.AlternateProvider != "" {
			steps += fmt.Sprintf("\n  3. Or use --provider=%s instead", strings.ToLower(ctx.AlternateProvider))
		}
		return fmt.Errorf("%s API quota exceeded: %w\n\n"+
			"You've reached your account spending limit.\n\n"+
			"To fix:\n%s", ctx.ProviderName, err, steps)

	case KindTimeout:
		return fmt.Errorf("%s API request timed out: %w\n\n"+
			"The request took too long to complete.\n\n"+
			"To fix:\n"+
			"  1. Check your internet connection\n"+
			"  2. Try again, this is often a temporary issue\n"+
			"  3. If persistent, lower --max-locations to shrink the prompt", ctx.ProviderName, err)

	case KindNetwork:
		return fmt.Errorf("network error connecting to %s API: %w\n\n"+
			"Unable to reach the API servers.\n\n"+
			"To fix:\n"+
			"  1. Check your internet connection\n"+
			"  2. Check if your firewall/proxy is blocking the connection\n"+
			"  3. Try again in a few moments", ctx.ProviderName, err)

	case KindServer:
		steps := "  1. Wait a few minutes and try again"
		if ctx.StatusPageURL != "" {
			steps += fmt.Sprintf("\n  2. Check status page: %s", ctx.StatusPageURL)
		}
		if ctx.AlternateProvider != "" {
			steps += fmt.Sprintf("\n  3. If urgent, try --provider=%s instead", strings.ToLower(ctx.AlternateProvider))
		}
		return fmt.Errorf("%s API server error: %w\n\n"+
			"The API is experiencing issues.\n\n"+
			"To fix:\n%s", ctx.ProviderName, err, steps)
	}

	return fmt.Errorf("%s API error: %w\n\n"+
		"An unexpected error occurred.\n\n"+
		"To fix:\n"+
		"  1. Check the error message above for details\n"+
		"  2. Verify your API configuration\n"+
		"  3. Try again or contact support", ctx.ProviderName, err)
}

// contains checks if a string contains a substring (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
