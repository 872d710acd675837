package table

import (
	"adminctl/app/dto"
	"strings"
	"sync"
	"time"
)

const SearchDebounce = 300 * time.Millisecond

// Controller owns the list params of a page. Every change is reported
// through onChange; search input is debounced.
type Controller struct {
	mu       sync.Mutex
	params   dto.ListParams
	timer    *time.Timer
	debounce time.Duration
	onChange func(params dto.ListParams)
}

func NewController(onChange func(params dto.ListParams)) *Controller {
	return &Controller{
		params:   dto.NewListParams(),
		debounce: SearchDebounce,
		onChange: onChange,
	}
}

func (c *Controller) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.debounce = d
}

func (c *Controller) Params() dto.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.copyLocked()
}

func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	c.update(func(p *dto.ListParams) {
		p.Page = page
	})
}

// SetPageSize changes the limit and goes back to the first page.
func (c *Controller) SetPageSize(size int) {
	if size < 1 {
		size = dto.DefaultLimit
	}

	c.update(func(p *dto.ListParams) {
		p.Limit = size
		p.Page = 1
	})
}

// SetFilter sets or, with an empty value, clears one filter.
func (c *Controller) SetFilter(key, value string) {
	c.update(func(p *dto.ListParams) {
		if value == "" {
			delete(p.Filters, key)
		} else {
			p.Filters[key] = value
		}
		p.Page = 1
	})
}

func (c *Controller) ResetFilters() {
	c.stopTimer()
	c.update(func(p *dto.ListParams) {
		p.Filters = map[string]string{}
		p.Search = ""
		p.Page = 1
	})
}

// SetSearch applies the term after the debounce window. A newer term
// replaces a pending one.
func (c *Controller) SetSearch(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.update(func(p *dto.ListParams) {
			p.Search = term
			p.Page = 1
		})
	})
}

// ApplySearch sets the term right away, dropping a pending one.
func (c *Controller) ApplySearch(term string) {
	c.stopTimer()
	c.update(func(p *dto.ListParams) {
		p.Search = strings.TrimSpace(term)
		p.Page = 1
	})
}

// Stop drops a pending search.
func (c *Controller) Stop() {
	c.stopTimer()
}

func (c *Controller) stopTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) update(fn func(p *dto.ListParams)) {
	c.mu.Lock()
	fn(&c.params)
	params := c.copyLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(params)
	}
}

func (c *Controller) copyLocked() dto.ListParams {
	params := c.params
	params.Filters = make(map[string]string, len(c.params.Filters))
	for key, value := range c.params.Filters {
		params.Filters[key] = value
	}

	return params
}
