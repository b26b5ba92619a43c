package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDescriptor indicates a request descriptor that cannot be
// canonically serialized (e.g. a parameter value with no JSON form).
var ErrInvalidDescriptor = errors.New("invalid request descriptor")

// DefaultNamespace is the key prefix used when none is configured.
const DefaultNamespace = "llm_cache"

// Message is a single chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestDescriptor describes an outbound completion request for
// fingerprinting purposes. It is never mutated by this package.
type RequestDescriptor struct {
	Provider string
	Model    string
	Messages []Message
	Params   map[string]any
}

// CacheKey is an opaque, fixed-length identifier for a cached response.
type CacheKey string

// String returns the key as a plain string.
func (k CacheKey) String() string { return string(k) }

// KeyBuilder derives deterministic cache keys from request descriptors.
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a key builder. An empty namespace selects
// DefaultNamespace.
func NewKeyBuilder(namespace string) *KeyBuilder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &KeyBuilder{namespace: namespace}
}

// canonicalRequest fixes the serialization order of descriptor fields.
// Params is serialized by encoding/json, which writes map keys in
// lexicographic order, so the result is independent of parameter
// insertion order. Message order is preserved: it is semantically
// significant and must not be reordered.
type canonicalRequest struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Params   map[string]any `json:"params"`
}

// Key derives the cache key for a descriptor.
// Format: <namespace>:<hex sha256 of canonical JSON>
//
// Two structurally equal descriptors always produce the same key; any
// difference in provider, model, messages or parameters produces a
// different one.
func (b *KeyBuilder) Key(desc RequestDescriptor) (CacheKey, error) {
	canonical := canonicalRequest{
		Provider: desc.Provider,
		Model:    desc.Model,
		Messages: desc.Messages,
		Params:   desc.Params,
	}

	// nil and empty are structurally equal; normalize so they hash the same
	if canonical.Messages == nil {
		canonical.Messages = []Message{}
	}
	if canonical.Params == nil {
		canonical.Params = map[string]any{}
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	sum := sha256.Sum256(data)
	return CacheKey(b.namespace + ":" + hex.EncodeToString(sum[:])), nil
}

// Pattern returns the glob pattern matching every key in this builder's
// namespace. It is the default scope for Store.Invalidate.
func (b *KeyBuilder) Pattern() string {
	return b.namespace + ":*"
}

// Namespace returns the configured namespace.
func (b *KeyBuilder) Namespace() string {
	return b.namespace
}
