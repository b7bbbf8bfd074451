package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a named tab holder. A client owns its open line items and its closed tab sessions.
//
// TabOpenedAt is set when an item is added to an empty tab and cleared on settlement.
type Client struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Items           []LineItem   `json:"items"`
	TabOpenedAt     *time.Time   `json:"tab_opened_at,omitempty"`
	History         []TabSession `json:"history"`
	PurchaseHistory []Purchase   `json:"-"`
	IsArchived      bool         `json:"is_archived"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewClient creates a client with an empty tab
func NewClient(name string, now time.Time) *Client {
	return &Client{
		ID:        uuid.New(),
		Name:      name,
		Items:     []LineItem{},
		History:   []TabSession{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Total returns the value of the open tab
func (c *Client) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	return total
}

// HasOpenTab reports whether the client has unsettled items
func (c *Client) HasOpenTab() bool {
	return len(c.Items) > 0
}

// AddItem puts one unit of the product on the tab. A product already on the tab
// gets its quantity incremented instead of a new line.
func (c *Client) AddItem(p Product, now time.Time) LineItem {
	if len(c.Items) == 0 {
		opened := now
		c.TabOpenedAt = &opened
	}
	c.UpdatedAt = now

	for i := range c.Items {
		if c.Items[i].matches(p) {
			c.Items[i].Quantity++
			return c.Items[i]
		}
	}

	item := LineItem{
		ID:        uuid.New(),
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.Price,
		Quantity:  1,
		ImageURL:  p.ImageURL,
		AddedAt:   now,
	}
	c.Items = append(c.Items, item)
	return item
}

// RemoveItem takes one unit of the line off the tab, dropping the line at zero.
// It returns false when no line has that id. TabOpenedAt is left alone.
func (c *Client) RemoveItem(itemID uuid.UUID, now time.Time) bool {
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		c.Items[i].Quantity--
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		c.UpdatedAt = now
		return true
	}
	return false
}

// ApplyProduct rewrites open lines of the product with its current catalog fields.
// Settled purchases are never touched. Returns the number of lines changed.
func (c *Client) ApplyProduct(p Product) int {
	changed := 0
	for i := range c.Items {
		if c.Items[i].ProductID != p.ID {
			continue
		}
		c.Items[i].Name = p.Name
		c.Items[i].Category = p.Category
		c.Items[i].UnitPrice = p.Price
		c.Items[i].ImageURL = p.ImageURL
		changed++
	}
	return changed
}

// CloseTab records a settled session and clears the open tab
func (c *Client) CloseTab(session TabSession) {
	c.History = append(c.History, session)
	c.PurchaseHistory = append(c.PurchaseHistory, session.Purchases...)
	c.Items = []LineItem{}
	c.TabOpenedAt = nil
	c.IsArchived = true
	c.UpdatedAt = session.ClosedAt
}

// RemoveSession deletes a session from history by id
func (c *Client) RemoveSession(sessionID uuid.UUID) bool {
	return c.removeSessions(func(s TabSession) bool { return s.ID == sessionID }) > 0
}

// RemoveSessionsOpenedAt deletes every session opened at t
func (c *Client) RemoveSessionsOpenedAt(t time.Time) []uuid.UUID {
	var removed []uuid.UUID
	c.removeSessions(func(s TabSession) bool {
		if s.OpenedAt.Equal(t) {
			removed = append(removed, s.ID)
			return true
		}
		return false
	})
	return removed
}

func (c *Client) removeSessions(match func(TabSession) bool) int {
	dropped := make(map[uuid.UUID]struct{})
	kept := c.History[:0]
	for _, s := range c.History {
		if match(s) {
			dropped[s.ID] = struct{}{}
			continue
		}
		kept = append(kept, s)
	}
	c.History = kept
	if len(dropped) == 0 {
		return 0
	}

	purchases := c.PurchaseHistory[:0]
	for _, p := range c.PurchaseHistory {
		if _, ok := dropped[p.SessionID]; !ok {
			purchases = append(purchases, p)
		}
	}
	c.PurchaseHistory = purchases
	return len(dropped)
}

// Absorb folds another client's open tab and history into c
func (c *Client) Absorb(other *Client, now time.Time) {
	hadTab := c.HasOpenTab()
	for _, item := range other.Items {
		merged := false
		for i := range c.Items {
			if c.Items[i].ProductID == item.ProductID && c.Items[i].Name == item.Name {
				c.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, item)
		}
	}

	// an open time left behind on an emptied tab does not count
	if !hadTab {
		c.TabOpenedAt = nil
	}
	if other.HasOpenTab() && other.TabOpenedAt != nil && (c.TabOpenedAt == nil || other.TabOpenedAt.Before(*c.TabOpenedAt)) {
		opened := *other.TabOpenedAt
		c.TabOpenedAt = &opened
	}

	for _, s := range other.History {
		s.ClientID = c.ID
		for i := range s.Purchases {
			s.Purchases[i].ClientID = c.ID
		}
		c.History = append(c.History, s)
		c.PurchaseHistory = append(c.PurchaseHistory, s.Purchases...)
	}

	c.IsArchived = c.IsArchived || other.IsArchived
	c.UpdatedAt = now
}

// Clone returns a deep copy so callers can mutate without touching stored state
func (c *Client) Clone() *Client {
	out := *c
	out.Items = append(c.Items[:0:0], c.Items...)
	if c.TabOpenedAt != nil {
		opened := *c.TabOpenedAt
		out.TabOpenedAt = &opened
	}
	out.History = append(c.History[:0:0], c.History...)
	for i, s := range out.History {
		out.History[i].Purchases = append(s.Purchases[:0:0], s.Purchases...)
	}
	out.PurchaseHistory = append(c.PurchaseHistory[:0:0], c.PurchaseHistory...)
	return &out
}

// MarshalJSON adds the open tab total
func (c Client) MarshalJSON() ([]byte, error) {
	type Alias Client
	return json.Marshal(&struct {
		Alias
		TabTotal float64 `json:"tab_total"`
	}{
		Alias:    Alias(c),
		TabTotal: c.Total().InexactFloat64(),
	})
}
