package portal

import (
	"encoding/json"
	"strings"
)

// MaxBrochureSize is the largest brochure attachment the backend accepts.
const MaxBrochureSize = 10 << 20

// FlexString accepts either a JSON string or a bare number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(strings.TrimSpace(string(b)))
	return nil
}

type Coordinator struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

type IncomeLine struct {
	Category             string  `json:"category"`
	ExpectedParticipants float64 `json:"expectedParticipants"`
	PerParticipantAmount float64 `json:"perParticipantAmount"`
	GstPercentage        float64 `json:"gstPercentage"`
	Income               float64 `json:"income"`
}

type ExpenseLine struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type BudgetBreakdown struct {
	Income             []IncomeLine  `json:"income"`
	Expenses           []ExpenseLine `json:"expenses"`
	TotalIncome        float64       `json:"totalIncome"`
	TotalExpenditure   float64       `json:"totalExpenditure"`
	UniversityOverhead float64       `json:"universityOverhead"`
}

type ClaimBill struct {
	Expenses           []ExpenseLine `json:"expenses"`
	Income             []IncomeLine  `json:"income,omitempty"`
	TotalExpenditure   float64       `json:"totalExpenditure"`
	TotalIncome        float64       `json:"totalIncome,omitempty"`
	UniversityOverhead float64       `json:"universityOverhead,omitempty"`
}

type OrganizingDepartments struct {
	Primary     string   `json:"primary"`
	Associative []string `json:"associative"`
}

// Programme is an event proposal record as the backend stores it.
type Programme struct {
	Id                    string                `json:"_id"`
	Title                 string                `json:"title"`
	StartDate             string                `json:"startDate"`
	EndDate               string                `json:"endDate"`
	Venue                 string                `json:"venue"`
	Mode                  string                `json:"mode"`
	Duration              FlexString            `json:"duration"`
	Type                  string                `json:"type"`
	Objectives            string                `json:"objectives"`
	Outcomes              string                `json:"outcomes"`
	Budget                FlexString            `json:"budget,omitempty"`
	Coordinators          []Coordinator         `json:"coordinators"`
	TargetAudience        []string              `json:"targetAudience"`
	ResourcePersons       []string              `json:"resourcePersons"`
	RegistrationProcedure json.RawMessage       `json:"registrationProcedure,omitempty"`
	OrganizingDepartments OrganizingDepartments `json:"organizingDepartments"`
	BudgetBreakdown       *BudgetBreakdown      `json:"budgetBreakdown,omitempty"`
	ClaimBill             *ClaimBill            `json:"claimBill,omitempty"`
	ClaimSubmitted        bool                  `json:"claimSubmitted"`
	Status                string                `json:"status,omitempty"`
	CreatedBy             string                `json:"createdBy,omitempty"`
	ReviewedBy            string                `json:"reviewedBy,omitempty"`
}

// HOD is the head of department who reviews a coordinator's proposals.
type HOD struct {
	Id         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type FormField struct {
	Name  string
	Value string
}

type File struct {
	Name    string
	Content []byte
}

// ProgrammeForm is the multipart body of a create or update call. Fields keep their order on the wire.
type ProgrammeForm struct {
	Fields   []FormField
	Brochure *File
}

func (f ProgrammeForm) Value(name string) (string, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

type ClaimRequest struct {
	Expenses []ExpenseLine `json:"expenses"`
	Income   []IncomeLine  `json:"income"`
}
