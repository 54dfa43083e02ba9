package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"streetkitchen/metrics"
	"streetkitchen/models"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultVendorCodePrefix   = "SOT"
	DefaultVendorCodeAttempts = 5

	// Suffixes longer than this are not treated as part of the sequence, so
	// a stray oversized code cannot overflow the counter.
	maxVendorCodeDigits = 9
)

// ErrVendorCodeTaken is returned by a VendorCodeStore when the code it was
// asked to insert already exists.
var ErrVendorCodeTaken = errors.New("vendor code already taken")

// VendorCodeStore is the storage side of vendor code allocation. InsertVendor
// must be guarded by a uniqueness constraint on the code.
type VendorCodeStore interface {
	MaxVendorCodeSuffix(ctx context.Context, prefix string) (int, error)
	InsertVendor(ctx context.Context, in models.CreateVendorInput, code string) (*models.Vendor, error)
}

func FormatVendorCode(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// vendorCodePattern matches codes that take part in the sequence. It is
// used as a Postgres regular expression.
func vendorCodePattern(prefix string) string {
	return fmt.Sprintf("^%s[0-9]{1,%d}$", regexp.QuoteMeta(prefix), maxVendorCodeDigits)
}

// ParseVendorCode returns the numeric suffix of code, or 0 when code does not
// carry prefix followed by at most nine digits.
func ParseVendorCode(prefix, code string) int {
	if !strings.HasPrefix(code, prefix) {
		return 0
	}
	digits := code[len(prefix):]
	if len(digits) > maxVendorCodeDigits {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// VendorCodeAllocator creates vendors with sequential codes. It reads the
// highest suffix, inserts the next one and, when another writer won the
// race, re-reads and tries again up to Attempts times.
type VendorCodeAllocator struct {
	Store    VendorCodeStore
	Prefix   string
	Attempts int
}

func NewVendorCodeAllocator(store VendorCodeStore, prefix string, attempts int) *VendorCodeAllocator {
	if prefix == "" {
		prefix = DefaultVendorCodePrefix
	}
	if attempts <= 0 {
		attempts = DefaultVendorCodeAttempts
	}
	return &VendorCodeAllocator{Store: store, Prefix: prefix, Attempts: attempts}
}

func (a *VendorCodeAllocator) Create(ctx context.Context, in models.CreateVendorInput) (*models.Vendor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: vendor name is required", ErrInvalidInput)
	}
	for attempt := 1; attempt <= a.Attempts; attempt++ {
		max, err := a.Store.MaxVendorCodeSuffix(ctx, a.Prefix)
		if err != nil {
			return nil, fmt.Errorf("read vendor codes: %w", err)
		}
		code := FormatVendorCode(a.Prefix, max+1)

		v, err := a.Store.InsertVendor(ctx, in, code)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrVendorCodeTaken) {
			return nil, fmt.Errorf("insert vendor: %w", err)
		}
		metrics.VendorCodeConflicts.Inc()
		log.WithFields(log.Fields{
			"code":    code,
			"attempt": attempt,
		}).Warn("Vendor code conflict, retrying")
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrVendorCodeExhausted, a.Attempts)
}
