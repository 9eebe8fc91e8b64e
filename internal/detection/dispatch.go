package detection

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/errs"
)

// Selection records which provider serves a mode.
type Selection struct {
	Provider Provider
	Kind     Kind
	Fallback bool   // True when a preferred provider was substituted
	Reason   string // Why the substitution happened; empty otherwise
}

// Result is the outcome of a dispatched detection.
type Result struct {
	Instances []Instance
	Provider  string
	Kind      Kind
	Fallback  bool
	Reason    string
	Discarded int // Instances removed by the label filter
}

type slot struct {
	provider Provider
	err      error
}

// Dispatcher chooses and lazily acquires providers per mode.
//
// A Dispatcher is safe for concurrent use. Each kind is acquired at most
// once; the outcome (provider or error) is kept for the Dispatcher's life.
type Dispatcher struct {
	mu        sync.Mutex
	factories map[Kind]Factory
	slots     map[Kind]slot
	filters   map[classify.Mode]LabelFilter
}

// NewDispatcher creates a Dispatcher with no providers and no label filters.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		factories: make(map[Kind]Factory),
		slots:     make(map[Kind]slot),
		filters:   make(map[classify.Mode]LabelFilter),
	}
}

// Register installs the factory for kind. Registering after the kind was
// acquired has no effect on the acquired provider.
func (d *Dispatcher) Register(kind Kind, f Factory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.factories[kind] = f
}

// SetLabels installs the allow-list applied to detections in mode. Modes
// without an allow-list keep every instance.
func (d *Dispatcher) SetLabels(mode classify.Mode, labels []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters[mode] = NewLabelFilter(labels)
}

// preference lists provider kinds in the order tried for each mode.
func preference(mode classify.Mode) []Kind {
	if mode == classify.Blueprint {
		return []Kind{KindBlueprint, KindGeneral}
	}
	return []Kind{KindOpenVocab, KindGeneral}
}

// acquire returns the provider for kind, creating it on first use. The
// second return is false when no factory is registered for kind.
func (d *Dispatcher) acquire(ctx context.Context, kind Kind) (Provider, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.slots[kind]; ok {
		return s.provider, true, s.err
	}
	f, ok := d.factories[kind]
	if !ok {
		return nil, false, nil
	}

	p, err := f(ctx)
	if err == nil && p == nil {
		err = fmt.Errorf("%s factory returned no provider", kind)
	}
	if err != nil {
		log.Printf("Acquiring %s detector failed: %v", kind, err)
	} else {
		log.Printf("Acquired %s detector %s", kind, p.Name())
	}
	d.slots[kind] = slot{provider: p, err: err}
	return p, true, err
}

// Select resolves the provider for mode. A non-empty override must name a
// mode exactly ("blueprint" or "room") and replaces mode.
func (d *Dispatcher) Select(ctx context.Context, mode classify.Mode, override string) (*Selection, error) {
	if override != "" {
		m, err := classify.ParseMode(override)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	return d.selectFrom(ctx, preference(mode))
}

func (d *Dispatcher) selectFrom(ctx context.Context, kinds []Kind) (*Selection, error) {
	var reasons []string
	for i, kind := range kinds {
		p, registered, err := d.acquire(ctx, kind)
		if !registered {
			continue
		}
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s detector unavailable: %v", kind, err))
			continue
		}
		sel := &Selection{Provider: p, Kind: kind}
		if i > 0 && len(reasons) > 0 {
			sel.Fallback = true
			sel.Reason = reasons[len(reasons)-1]
			log.Printf("Falling back to %s detector: %s", kind, sel.Reason)
		}
		return sel, nil
	}
	if len(reasons) == 0 {
		return nil, fmt.Errorf("%w: no detector registered", errs.ErrProviderUnavailable)
	}
	return nil, fmt.Errorf("%w: %s", errs.ErrProviderUnavailable, reasons[len(reasons)-1])
}

// Detect selects a provider for mode, runs it, and applies the mode's
// label allow-list whichever provider ran. If a preferred provider fails
// at detection time the general provider is tried once before giving up.
func (d *Dispatcher) Detect(ctx context.Context, mode classify.Mode, override string, img image.Image, prompt string) (*Result, error) {
	sel, err := d.Select(ctx, mode, override)
	if err != nil {
		return nil, err
	}
	if override != "" {
		mode, _ = classify.ParseMode(override)
	}

	instances, err := sel.Provider.Detect(ctx, img, prompt)
	if err != nil && sel.Kind != KindGeneral {
		reason := fmt.Sprintf("%s detector failed: %v", sel.Kind, err)
		fb, ferr := d.selectFrom(ctx, []Kind{KindGeneral})
		if ferr != nil {
			return nil, fmt.Errorf("%s: %w", reason, ferr)
		}
		log.Printf("Falling back to general detector: %s", reason)
		sel = &Selection{Provider: fb.Provider, Kind: KindGeneral, Fallback: true, Reason: reason}
		instances, err = sel.Provider.Detect(ctx, img, prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("%s detect: %w", sel.Provider.Name(), err)
	}

	d.mu.Lock()
	filter, hasFilter := d.filters[mode]
	d.mu.Unlock()

	kept := instances
	if hasFilter {
		kept = filter.Apply(instances)
	}

	return &Result{
		Instances: kept,
		Provider:  sel.Provider.Name(),
		Kind:      sel.Kind,
		Fallback:  sel.Fallback,
		Reason:    sel.Reason,
		Discarded: len(instances) - len(kept),
	}, nil
}
