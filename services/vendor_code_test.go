package services

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"streetkitchen/models"
)

// memVendorStore enforces code uniqueness like the vendors table does.
type memVendorStore struct {
	mu      sync.Mutex
	vendors map[string]*models.Vendor
	nextID  int64
	// onRead runs after every MaxVendorCodeSuffix, outside the lock.
	onRead func()
}

func newMemVendorStore() *memVendorStore {
	return &memVendorStore{vendors: make(map[string]*models.Vendor)}
}

func (s *memVendorStore) MaxVendorCodeSuffix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	max := 0
	for code := range s.vendors {
		if n := ParseVendorCode(prefix, code); n > max {
			max = n
		}
	}
	s.mu.Unlock()
	if s.onRead != nil {
		s.onRead()
	}
	return max, nil
}

func (s *memVendorStore) InsertVendor(_ context.Context, in models.CreateVendorInput, code string) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[code]; ok {
		return nil, ErrVendorCodeTaken
	}
	s.nextID++
	v := &models.Vendor{ID: s.nextID, Name: in.Name, Code: code, IsActive: true}
	s.vendors[code] = v
	return v, nil
}

type takenStore struct{ inserts int }

func (s *takenStore) MaxVendorCodeSuffix(context.Context, string) (int, error) { return 7, nil }
func (s *takenStore) InsertVendor(context.Context, models.CreateVendorInput, string) (*models.Vendor, error) {
	s.inserts++
	return nil, ErrVendorCodeTaken
}

func TestFormatAndParseVendorCode(t *testing.T) {
	tests := []struct {
		n    int
		code string
	}{
		{1, "SOT001"},
		{42, "SOT042"},
		{999, "SOT999"},
		{1000, "SOT1000"},
	}
	for _, tt := range tests {
		if got := FormatVendorCode("SOT", tt.n); got != tt.code {
			t.Errorf("FormatVendorCode(%d) = %q, want %q", tt.n, got, tt.code)
		}
		if got := ParseVendorCode("SOT", tt.code); got != tt.n {
			t.Errorf("ParseVendorCode(%q) = %d, want %d", tt.code, got, tt.n)
		}
	}
	for _, bad := range []string{"", "SOT", "SOTabc", "XYZ001", "SOT-1", "SOT99999999999"} {
		if got := ParseVendorCode("SOT", bad); got != 0 {
			t.Errorf("ParseVendorCode(%q) = %d, want 0", bad, got)
		}
	}
}

func TestVendorCodePattern(t *testing.T) {
	re := regexp.MustCompile(vendorCodePattern("SOT"))
	tests := []struct {
		code string
		want bool
	}{
		{"SOT001", true},
		{"SOT1000", true},
		{"SOT999999999", true},
		{"SOT9999999999", false},
		{"SOT99999999999", false},
		{"SOT", false},
		{"SOT01a", false},
		{"XSOT001", false},
	}
	for _, tt := range tests {
		if got := re.MatchString(tt.code); got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestAllocatorIgnoresOversizedCodes(t *testing.T) {
	store := newMemVendorStore()
	store.vendors["SOT99999999999"] = &models.Vendor{ID: 1, Code: "SOT99999999999"}
	store.vendors["SOT004"] = &models.Vendor{ID: 2, Code: "SOT004"}
	store.nextID = 2

	v, err := NewVendorCodeAllocator(store, "SOT", 5).Create(context.Background(), models.CreateVendorInput{Name: "Vendor"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Code != "SOT005" {
		t.Errorf("code = %q, want SOT005", v.Code)
	}
}

func TestAllocatorSequentialCodes(t *testing.T) {
	store := newMemVendorStore()
	a := NewVendorCodeAllocator(store, "", 0)
	ctx := context.Background()

	for i, want := range []string{"SOT001", "SOT002", "SOT003"} {
		v, err := a.Create(ctx, models.CreateVendorInput{Name: "Vendor"})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if v.Code != want {
			t.Errorf("Create #%d code = %q, want %q", i, v.Code, want)
		}
	}
}

func TestAllocatorConcurrentCreatesGetDistinctCodes(t *testing.T) {
	store := newMemVendorStore()
	// The first two reads wait for each other, so both writers pick SOT001.
	var barrier sync.WaitGroup
	barrier.Add(2)
	var reads int32
	store.onRead = func() {
		if atomic.AddInt32(&reads, 1) <= 2 {
			barrier.Done()
			barrier.Wait()
		}
	}
	a := NewVendorCodeAllocator(store, "SOT", 5)

	var wg sync.WaitGroup
	codes := make([]string, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := a.Create(context.Background(), models.CreateVendorInput{Name: "Vendor"})
			errs[i] = err
			if v != nil {
				codes[i] = v.Code
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	sort.Strings(codes)
	if codes[0] != "SOT001" || codes[1] != "SOT002" {
		t.Errorf("codes = %v, want [SOT001 SOT002]", codes)
	}
	if n := atomic.LoadInt32(&reads); n != 3 {
		t.Errorf("reads = %d, want 3 (one retry)", n)
	}
}

func TestAllocatorManyConcurrentCreates(t *testing.T) {
	const n = 8
	store := newMemVendorStore()
	a := NewVendorCodeAllocator(store, "SOT", n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.Create(context.Background(), models.CreateVendorInput{Name: "Vendor"}); err != nil {
				t.Errorf("Create: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(store.vendors) != n {
		t.Fatalf("vendors = %d, want %d", len(store.vendors), n)
	}
	for i := 1; i <= n; i++ {
		if _, ok := store.vendors[FormatVendorCode("SOT", i)]; !ok {
			t.Errorf("missing code %s", FormatVendorCode("SOT", i))
		}
	}
}

func TestAllocatorExhaustsRetries(t *testing.T) {
	store := &takenStore{}
	a := NewVendorCodeAllocator(store, "SOT", 5)
	_, err := a.Create(context.Background(), models.CreateVendorInput{Name: "Vendor"})
	if !errors.Is(err, ErrVendorCodeExhausted) {
		t.Fatalf("err = %v, want ErrVendorCodeExhausted", err)
	}
	if store.inserts != 5 {
		t.Errorf("inserts = %d, want 5", store.inserts)
	}
}

func TestAllocatorRequiresName(t *testing.T) {
	a := NewVendorCodeAllocator(newMemVendorStore(), "SOT", 5)
	if _, err := a.Create(context.Background(), models.CreateVendorInput{Name: "  "}); err == nil {
		t.Error("expected error for blank name")
	}
}
