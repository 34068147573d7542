package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type ClientStub struct {
	mu          sync.RWMutex
	programmes  []Programme
	hods        map[string]HOD
	claims      map[string]ClaimRequest
	pdfs        map[string][]byte
	forms       []ProgrammeForm
	createCalls int
	updateCalls int
	listCalls   int
	nextId      int
	createGate  chan struct{}
	listErr     error
	createErr   error
	updateErr   error
	deleteErr   error
	claimErr    error
	hodErr      error
}

func NewClientStub() *ClientStub {
	return &ClientStub{
		hods:   make(map[string]HOD),
		claims: make(map[string]ClaimRequest),
		pdfs:   make(map[string][]byte),
	}
}

func (c *ClientStub) ListProgrammes(ctx context.Context) ([]Programme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	result := make([]Programme, len(c.programmes))
	copy(result, c.programmes)
	return result, nil
}

func (c *ClientStub) GetProgramme(ctx context.Context, id string) (Programme, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.programmes {
		if p.Id == id {
			return p, nil
		}
	}
	return Programme{}, &APIError{Status: 404, Message: "Programme not found"}
}

func (c *ClientStub) CreateProgramme(ctx context.Context, form ProgrammeForm) (Programme, error) {
	c.mu.Lock()
	c.createCalls++
	gate := c.createGate
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.forms = append(c.forms, form)
	if c.createErr != nil {
		return Programme{}, c.createErr
	}
	c.nextId++
	title, _ := form.Value("title")
	p := Programme{Id: fmt.Sprintf("p-%d", c.nextId), Title: title}
	c.programmes = append(c.programmes, p)
	return p, nil
}

func (c *ClientStub) UpdateProgramme(ctx context.Context, id string, form ProgrammeForm) (Programme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updateCalls++
	c.forms = append(c.forms, form)
	if c.updateErr != nil {
		return Programme{}, c.updateErr
	}
	title, _ := form.Value("title")
	for i, p := range c.programmes {
		if p.Id == id {
			c.programmes[i].Title = title
			return c.programmes[i], nil
		}
	}
	return Programme{}, &APIError{Status: 404, Message: "Programme not found"}
}

func (c *ClientStub) DeleteProgramme(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deleteErr != nil {
		return c.deleteErr
	}
	for i, p := range c.programmes {
		if p.Id == id {
			c.programmes = append(c.programmes[:i], c.programmes[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: 404, Message: "Programme not found"}
}

func (c *ClientStub) SubmitClaim(ctx context.Context, eventId string, claim ClaimRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.claimErr != nil {
		return c.claimErr
	}
	c.claims[eventId] = claim
	return nil
}

func (c *ClientStub) ClaimPDF(ctx context.Context, id string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pdf, ok := c.pdfs[id]
	if !ok {
		return nil, &APIError{Status: 404, Message: "Claim not found"}
	}
	return pdf, nil
}

func (c *ClientStub) LookupHOD(ctx context.Context, userId string) (HOD, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.hodErr != nil {
		return HOD{}, c.hodErr
	}
	hod, ok := c.hods[userId]
	if !ok {
		return HOD{}, &APIError{Status: 404, Message: "HOD not found for department"}
	}
	return hod, nil
}

// Helper methods for test setup

func (c *ClientStub) SetProgrammes(programmes []Programme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programmes = make([]Programme, len(programmes))
	copy(c.programmes, programmes)
}

func (c *ClientStub) SetHOD(userId string, hod HOD) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hods[userId] = hod
}

func (c *ClientStub) SetPDF(id string, pdf []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pdfs[id] = pdf
}

// BlockCreate makes CreateProgramme wait until the returned function is called.
func (c *ClientStub) BlockCreate() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gate := make(chan struct{})
	c.createGate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (c *ClientStub) Claim(eventId string) (ClaimRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	claim, ok := c.claims[eventId]
	return claim, ok
}

func (c *ClientStub) Forms() []ProgrammeForm {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]ProgrammeForm, len(c.forms))
	copy(result, c.forms)
	return result
}

func (c *ClientStub) CreateCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createCalls
}

func (c *ClientStub) UpdateCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updateCalls
}

func (c *ClientStub) ListCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listCalls
}

// Error setters for testing error scenarios

func (c *ClientStub) SetListError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listErr = err
}

func (c *ClientStub) SetCreateError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createErr = err
}

func (c *ClientStub) SetUpdateError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateErr = err
}

func (c *ClientStub) SetDeleteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteErr = err
}

func (c *ClientStub) SetClaimError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claimErr = err
}

func (c *ClientStub) SetHODError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hodErr = err
}

var ErrClientTestError = errors.New("client test error")
