package proposal

import (
	"errors"
	"strings"

	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/user"
)

type Mode string

const (
	Online  Mode = "Online"
	Offline Mode = "Offline"
	Hybrid  Mode = "Hybrid"
)

var ErrUnknownField = errors.New("unknown coordinator field")

func (m Mode) Valid() bool {
	return m == Online || m == Offline || m == Hybrid
}

type Coordinator struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

func (c Coordinator) complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Designation) != "" &&
		strings.TrimSpace(c.Department) != ""
}

type PaymentDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	IfscCode      string `json:"ifscCode"`
	UpiId         string `json:"upiId,omitempty"`
	Fee           string `json:"fee,omitempty"`
}

type RegistrationForm struct {
	Url    string   `json:"url,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// RegistrationProcedure is optional; its sub-records are present only when the coordinator fills them in.
type RegistrationProcedure struct {
	Enabled          bool              `json:"enabled"`
	Instructions     string            `json:"instructions,omitempty"`
	Deadline         string            `json:"deadline,omitempty"`
	ParticipantLimit string            `json:"participantLimit,omitempty"`
	PaymentDetails   *PaymentDetails   `json:"paymentDetails,omitempty"`
	RegistrationForm *RegistrationForm `json:"registrationForm,omitempty"`
}

type OrganizingDepartments struct {
	Primary     string   `json:"primary"`
	Associative []string `json:"associative"`
}

// EventProposal is the aggregate state edited by the proposal wizard.
type EventProposal struct {
	Title                 string                `json:"title"`
	StartDate             string                `json:"startDate"`
	EndDate               string                `json:"endDate"`
	Venue                 string                `json:"venue"`
	Mode                  Mode                  `json:"mode"`
	Duration              string                `json:"duration"`
	Type                  string                `json:"type"`
	Objectives            string                `json:"objectives"`
	Outcomes              string                `json:"outcomes"`
	Budget                string                `json:"budget"`
	Coordinators          []Coordinator         `json:"coordinators"`
	TargetAudience        []string              `json:"targetAudience"`
	ResourcePersons       []string              `json:"resourcePersons"`
	RegistrationProcedure RegistrationProcedure `json:"registrationProcedure"`
	BudgetBreakdown       budget.Breakdown      `json:"budgetBreakdown"`
	OrganizingDepartments OrganizingDepartments `json:"organizingDepartments"`
}

// NewProposal returns an empty proposal whose primary coordinator is the logged-in user.
func NewProposal(u user.User) EventProposal {
	return EventProposal{
		Mode: Offline,
		Coordinators: []Coordinator{{
			Name:        u.Name,
			Designation: u.Designation,
			Department:  u.Department,
		}},
		TargetAudience:  []string{},
		ResourcePersons: []string{},
		BudgetBreakdown: budget.Default(),
		OrganizingDepartments: OrganizingDepartments{
			Primary:     u.Department,
			Associative: []string{},
		},
	}
}

// Clone deep-copies every slice so that mutations on the result never leak into p.
func (p EventProposal) Clone() EventProposal {
	next := p
	next.Coordinators = append([]Coordinator{}, p.Coordinators...)
	next.TargetAudience = append([]string{}, p.TargetAudience...)
	next.ResourcePersons = append([]string{}, p.ResourcePersons...)
	next.OrganizingDepartments.Associative = append([]string{}, p.OrganizingDepartments.Associative...)
	next.BudgetBreakdown = p.BudgetBreakdown.Clone()
	if p.RegistrationProcedure.PaymentDetails != nil {
		details := *p.RegistrationProcedure.PaymentDetails
		next.RegistrationProcedure.PaymentDetails = &details
	}
	if p.RegistrationProcedure.RegistrationForm != nil {
		form := *p.RegistrationProcedure.RegistrationForm
		form.Fields = append([]string{}, form.Fields...)
		next.RegistrationProcedure.RegistrationForm = &form
	}
	return next
}

func (p EventProposal) AddCoordinator() EventProposal {
	next := p.Clone()
	next.Coordinators = append(next.Coordinators, Coordinator{})
	return next
}

// RemoveCoordinator never removes the primary coordinator at index 0.
func (p EventProposal) RemoveCoordinator(index int) EventProposal {
	next := p.Clone()
	if index <= 0 || index >= len(next.Coordinators) {
		return next
	}
	next.Coordinators = append(next.Coordinators[:index], next.Coordinators[index+1:]...)
	return next
}

// UpdateCoordinator edits one field. The primary coordinator's name is fixed to the profile.
func (p EventProposal) UpdateCoordinator(index int, field, value string) (EventProposal, error) {
	next := p.Clone()
	if index < 0 || index >= len(next.Coordinators) {
		return next, nil
	}
	c := &next.Coordinators[index]
	switch field {
	case "name":
		if index == 0 {
			return next, nil
		}
		c.Name = value
	case "designation":
		c.Designation = value
	case "department":
		c.Department = value
	default:
		return p, ErrUnknownField
	}
	return next, nil
}

// AddTargetAudience ignores blank entries and entries already present, compared case-insensitively.
func (p EventProposal) AddTargetAudience(audience string) EventProposal {
	next := p.Clone()
	audience = strings.TrimSpace(audience)
	if audience == "" {
		return next
	}
	for _, existing := range next.TargetAudience {
		if strings.EqualFold(existing, audience) {
			return next
		}
	}
	next.TargetAudience = append(next.TargetAudience, audience)
	return next
}

func (p EventProposal) RemoveTargetAudience(audience string) EventProposal {
	next := p.Clone()
	kept := next.TargetAudience[:0]
	for _, existing := range next.TargetAudience {
		if !strings.EqualFold(existing, audience) {
			kept = append(kept, existing)
		}
	}
	next.TargetAudience = kept
	return next
}

func (p EventProposal) AddResourcePerson(name string) EventProposal {
	next := p.Clone()
	if name = strings.TrimSpace(name); name != "" {
		next.ResourcePersons = append(next.ResourcePersons, name)
	}
	return next
}

func (p EventProposal) RemoveResourcePerson(index int) EventProposal {
	next := p.Clone()
	if index < 0 || index >= len(next.ResourcePersons) {
		return next
	}
	next.ResourcePersons = append(next.ResourcePersons[:index], next.ResourcePersons[index+1:]...)
	return next
}

// DedupTargetAudience applies the same set semantics as AddTargetAudience to a whole list,
// keeping the first spelling of every entry.
func DedupTargetAudience(audiences []string) []string {
	result := make([]string, 0, len(audiences))
	for _, a := range audiences {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		duplicate := false
		for _, existing := range result {
			if strings.EqualFold(existing, a) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, a)
		}
	}
	return result
}
