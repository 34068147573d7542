package proposal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/user"
	log "github.com/sirupsen/logrus"
)

const isoLayout = "2006-01-02T15:04:05.000Z"

type approver struct {
	Role   string `json:"role"`
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type departmentApprover struct {
	Department string `json:"department"`
	UserId     string `json:"userId,omitempty"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status"`
}

// Payload serialises a validated proposal into the multipart field set the backend expects.
// Row income is derived again first. Nested structures travel as JSON strings.
func Payload(p EventProposal, createdBy user.User, hod portal.HOD) (portal.ProgrammeForm, error) {
	p.BudgetBreakdown = p.BudgetBreakdown.RecalculateAllIncome()
	startDate, err := isoDate(p.StartDate)
	if err != nil {
		return portal.ProgrammeForm{}, invalid("Start date is not a valid date")
	}
	endDate, err := isoDate(p.EndDate)
	if err != nil {
		return portal.ProgrammeForm{}, invalid("End date is not a valid date")
	}

	fields := []portal.FormField{
		{Name: "title", Value: strings.TrimSpace(p.Title)},
		{Name: "startDate", Value: startDate},
		{Name: "endDate", Value: endDate},
		{Name: "venue", Value: strings.TrimSpace(p.Venue)},
		{Name: "mode", Value: string(p.Mode)},
		{Name: "duration", Value: strings.TrimSpace(p.Duration)},
		{Name: "type", Value: strings.TrimSpace(p.Type)},
		{Name: "objectives", Value: p.Objectives},
		{Name: "outcomes", Value: p.Outcomes},
		{Name: "budget", Value: budgetOrDefault(p)},
		{Name: "createdBy", Value: createdBy.Id},
		{Name: "reviewedBy", Value: hod.Id},
	}

	departments := []departmentApprover{{
		Department: p.OrganizingDepartments.Primary,
		UserId:     hod.Id,
		Name:       hod.Name,
		Status:     "pending",
	}}
	for _, d := range p.OrganizingDepartments.Associative {
		departments = append(departments, departmentApprover{Department: d, Status: "pending"})
	}

	coordinators := make([]portal.Coordinator, 0, len(p.Coordinators))
	for _, c := range p.Coordinators {
		coordinators = append(coordinators, portal.Coordinator(c))
	}

	nested := []struct {
		name  string
		value any
	}{
		{"coordinators", coordinators},
		{"targetAudience", DedupTargetAudience(p.TargetAudience)},
		{"resourcePersons", nonNil(p.ResourcePersons)},
		{"registrationProcedure", p.RegistrationProcedure},
		{"approvers", []approver{{Role: "HOD", UserId: hod.Id, Name: hod.Name, Status: "pending"}}},
		{"organizingDepartments", portal.OrganizingDepartments{
			Primary:     p.OrganizingDepartments.Primary,
			Associative: nonNil(p.OrganizingDepartments.Associative),
		}},
		{"departmentApprovers", departments},
		{"budgetBreakdown", p.BudgetBreakdown.ToWire()},
	}
	for _, n := range nested {
		encoded, err := json.Marshal(n.value)
		if err != nil {
			return portal.ProgrammeForm{}, fmt.Errorf("failed to encode %s: %w", n.name, err)
		}
		fields = append(fields, portal.FormField{Name: n.name, Value: string(encoded)})
	}

	return portal.ProgrammeForm{Fields: fields}, nil
}

// FromRecord turns a stored programme back into an editable proposal.
func FromRecord(record portal.Programme) EventProposal {
	p := EventProposal{
		Title:           record.Title,
		StartDate:       editableDate(record.StartDate),
		EndDate:         editableDate(record.EndDate),
		Venue:           record.Venue,
		Mode:            Mode(record.Mode),
		Duration:        string(record.Duration),
		Type:            record.Type,
		Objectives:      record.Objectives,
		Outcomes:        record.Outcomes,
		Budget:          string(record.Budget),
		TargetAudience:  DedupTargetAudience(record.TargetAudience),
		ResourcePersons: nonNil(record.ResourcePersons),
		BudgetBreakdown: budget.FromWire(record.BudgetBreakdown),
		OrganizingDepartments: OrganizingDepartments{
			Primary:     record.OrganizingDepartments.Primary,
			Associative: nonNil(record.OrganizingDepartments.Associative),
		},
	}
	if !p.Mode.Valid() {
		p.Mode = Offline
	}
	for _, c := range record.Coordinators {
		p.Coordinators = append(p.Coordinators, Coordinator(c))
	}
	if len(p.Coordinators) == 0 {
		p.Coordinators = []Coordinator{{}}
	}
	if len(record.RegistrationProcedure) > 0 && string(record.RegistrationProcedure) != "null" {
		if err := json.Unmarshal(record.RegistrationProcedure, &p.RegistrationProcedure); err != nil {
			log.Warnf("Ignoring malformed registration procedure of programme %s: %v", record.Id, err)
		}
	}
	return p
}

func isoDate(value string) (string, error) {
	t, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(isoLayout), nil
}

func editableDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return t.UTC().Format("2006-01-02")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
