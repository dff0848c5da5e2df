package domain

import "sync"

type CartLine struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// CartView is the aggregate read model consumed by the cart screen and the
// checkout handoff. Version grows by one with every cart mutation, so a
// subscriber can drop a view older than the one it already holds.
type CartView struct {
	Version          uint64          `json:"version"`
	Lines            []EffectiveLine `json:"lines"`
	TotalQty         int             `json:"total_qty"`
	TotalAmount      int64           `json:"total_amount"`
	TotalAmountLabel string          `json:"total_amount_label"`
	CheckoutEnabled  bool            `json:"checkout_enabled"`
}

// Summarize folds cart lines into totals. Lines with a non-positive quantity
// count as absent.
func Summarize(lines []CartLine) CartView {
	view := CartView{Lines: make([]EffectiveLine, 0, len(lines))}
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		eff := PriceLine(line)
		view.Lines = append(view.Lines, eff)
		view.TotalQty += line.Qty
		view.TotalAmount += eff.LineTotal
	}
	view.TotalAmountLabel = FormatVND(view.TotalAmount)
	view.CheckoutEnabled = len(view.Lines) > 0
	return view
}

// Cart is the session cart. A product appears in at most one line and every
// line has Qty >= 1. Mutations are visible to readers as soon as they return.
type Cart struct {
	mu        sync.RWMutex
	lines     []CartLine
	version   uint64
	observers map[int]func(CartView)
	nextObs   int
}

func NewCart() *Cart {
	return &Cart{observers: make(map[int]func(CartView))}
}

// Add inserts p with quantity 1, or increments the quantity of its line.
func (c *Cart) Add(p Product) CartView {
	c.mu.Lock()
	if i := c.indexOf(p.Key()); i >= 0 {
		c.lines[i].Qty++
	} else {
		c.lines = append(c.lines, CartLine{Product: p, Qty: 1})
	}
	view, observers := c.snapshotLocked()
	c.mu.Unlock()

	notify(observers, view)
	return view
}

// Remove decrements the quantity of p's line and drops the line when it
// reaches zero. Removing an absent product is a no-op.
func (c *Cart) Remove(p Product) CartView {
	c.mu.Lock()
	i := c.indexOf(p.Key())
	if i < 0 {
		view := c.viewLocked()
		c.mu.Unlock()
		return view
	}
	if c.lines[i].Qty > 1 {
		c.lines[i].Qty--
	} else {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	view, observers := c.snapshotLocked()
	c.mu.Unlock()

	notify(observers, view)
	return view
}

// Take removes every line from the cart and returns them, in one step. A
// checkout owns the returned lines until it either submits them or hands
// them back with Restore.
func (c *Cart) Take() ([]CartLine, CartView) {
	c.mu.Lock()
	lines := c.lines
	c.lines = nil
	if len(lines) == 0 {
		view := c.viewLocked()
		c.mu.Unlock()
		return nil, view
	}
	view, observers := c.snapshotLocked()
	c.mu.Unlock()

	notify(observers, view)
	return lines, view
}

// Restore puts lines taken by a failed checkout back. A product added again
// in the meantime keeps its current line and gains the restored quantity.
func (c *Cart) Restore(lines []CartLine) CartView {
	c.mu.Lock()
	changed := false
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		changed = true
		if i := c.indexOf(line.Product.Key()); i >= 0 {
			c.lines[i].Qty += line.Qty
		} else {
			c.lines = append(c.lines, line)
		}
	}
	if !changed {
		view := c.viewLocked()
		c.mu.Unlock()
		return view
	}
	view, observers := c.snapshotLocked()
	c.mu.Unlock()

	notify(observers, view)
	return view
}

// Lookup returns the line holding the product with the given key.
func (c *Cart) Lookup(key string) (CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(key); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

func (c *Cart) View() CartView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

// Subscribe registers fn to receive the new view after every mutation. The
// returned function unregisters it. Concurrent mutations may deliver their
// views out of order; compare Version to keep the latest.
func (c *Cart) Subscribe(fn func(CartView)) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

func (c *Cart) indexOf(key string) int {
	for i, line := range c.lines {
		if line.Product.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) viewLocked() CartView {
	view := Summarize(c.lines)
	view.Version = c.version
	return view
}

// snapshotLocked records a mutation and returns the new view together with
// the observers to notify once the lock is released.
func (c *Cart) snapshotLocked() (CartView, []func(CartView)) {
	c.version++
	observers := make([]func(CartView), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	return c.viewLocked(), observers
}

func notify(observers []func(CartView), view CartView) {
	for _, fn := range observers {
		fn(view)
	}
}
