package validation

import (
	"regexp"

	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// Field ids shared by the dashboard forms.
const (
	FieldUserType        = "userType"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldContactNumber   = "contactNumber"
	FieldPinCode         = "pinCode"
	FieldComplaintType   = "complaintType"
	FieldPriority        = "priority"
	FieldDescription     = "description"
	FieldAddress         = "address"
	FieldWorkerType      = "workerType"
	FieldWorkerID        = "workerId"
	FieldComplaintID     = "complaintId"
)

// FormErrorMessage is reported when any field of a form fails.
const FormErrorMessage = "Please correct the errors in the form before submitting."

// MaxDescriptionLength bounds complaint descriptions.
const MaxDescriptionLength = 2000

var (
	// ComplaintIDPattern is the textual scheme of complaint ids.
	ComplaintIDPattern = regexp.MustCompile(`^CM\d{6}$`)

	priorityPattern = regexp.MustCompile(`^(low|medium|high)$`)
	rolePattern     = regexp.MustCompile(`^(consumer|admin|worker)$`)
	pinPattern      = regexp.MustCompile(`^\d{6}$`)
)

// Field is one form input and its ordered rules. A Matches rule without a
// value is bound to the named sibling's submitted value.
type Field struct {
	ID    string
	Rules []Rule
}

// Form is an ordered set of fields.
type Form struct {
	Name   string
	Fields []Field
}

// Report collects per-field failures in field order.
type Report struct {
	Order  []string
	Errors map[string]string
}

// OK reports whether every field passed.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err converts a failing report into a VALIDATION_FAILED error.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	fields := make(map[string]any, len(r.Errors))
	for k, v := range r.Errors {
		fields[k] = v
	}
	return apperrors.NewValidationError(FormErrorMessage, map[string]any{"fields": fields})
}

// Validate checks every field against values.
func (f Form) Validate(values map[string]string) Report {
	report := Report{Errors: map[string]string{}}
	for _, field := range f.Fields {
		rules := make([]Rule, len(field.Rules))
		for i, rule := range field.Rules {
			if rule.Kind == KindMatches && rule.OtherID != "" {
				rule.Other = values[rule.OtherID]
			}
			rules[i] = rule
		}
		res := Validate(field.ID, values[field.ID], rules...)
		if !res.OK {
			report.Order = append(report.Order, field.ID)
			report.Errors[field.ID] = res.Message
		}
	}
	return report
}

var LoginForm = Form{
	Name: "login",
	Fields: []Field{
		{ID: FieldUserType, Rules: []Rule{
			Required().WithMessage("Please select your account type"),
			Pattern(rolePattern, "Please select your account type"),
		}},
		{ID: FieldEmail, Rules: []Rule{
			Required().WithMessage("Email address is required"),
			EmailFormat(),
		}},
		{ID: FieldPassword, Rules: []Rule{
			Required().WithMessage("Password is required"),
			MinLength(6).WithMessage("Password must be at least 6 characters"),
		}},
	},
}

var SignupForm = Form{
	Name: "signup",
	Fields: []Field{
		{ID: FieldUserType, Rules: []Rule{
			Required(),
			Pattern(rolePattern, "Please select your account type"),
		}},
		{ID: FieldFirstName, Rules: []Rule{
			Required(),
			MinLength(2).WithMessage("Name must be at least 2 characters long"),
		}},
		{ID: FieldLastName, Rules: []Rule{
			Required(),
			MinLength(2).WithMessage("Name must be at least 2 characters long"),
		}},
		{ID: FieldEmail, Rules: []Rule{Required(), EmailFormat()}},
		{ID: FieldContactNumber, Rules: []Rule{Required(), PhoneFormat(10)}},
		{ID: FieldPinCode, Rules: []Rule{
			Required(),
			Pattern(pinPattern, "PIN code must be 6 digits"),
		}},
		{ID: FieldPassword, Rules: []Rule{Required(), PasswordStrength(MinPasswordLength)}},
		{ID: FieldConfirmPassword, Rules: []Rule{
			Required(),
			Matches(FieldPassword, "").WithMessage("Passwords do not match"),
		}},
	},
}

var ComplaintForm = Form{
	Name: "complaint",
	Fields: []Field{
		{ID: FieldComplaintType, Rules: []Rule{Required()}},
		{ID: FieldPriority, Rules: []Rule{
			Required(),
			Pattern(priorityPattern, "Please select a valid priority"),
		}},
		{ID: FieldDescription, Rules: []Rule{
			Required(),
			MaxLength(MaxDescriptionLength).WithMessage("Description must be at most 2000 characters"),
		}},
		{ID: FieldAddress, Rules: []Rule{Required()}},
		{ID: FieldContactNumber, Rules: []Rule{Required(), PhoneFormat(10)}},
		{ID: FieldEmail, Rules: []Rule{Required(), EmailFormat()}},
	},
}

var AssignmentForm = Form{
	Name: "assignment",
	Fields: []Field{
		{ID: FieldWorkerType, Rules: []Rule{
			Required().WithMessage("Please select both worker type and worker before assigning the task."),
		}},
		{ID: FieldWorkerID, Rules: []Rule{
			Required().WithMessage("Please select both worker type and worker before assigning the task."),
		}},
		{ID: FieldPriority, Rules: []Rule{
			Required(),
			Pattern(priorityPattern, "Please select a valid priority"),
		}},
	},
}

var TrackForm = Form{
	Name: "track",
	Fields: []Field{
		{ID: FieldComplaintID, Rules: []Rule{
			Required(),
			Pattern(ComplaintIDPattern, "Please enter a valid Complaint ID format (CM followed by 6 digits)"),
		}},
	},
}
