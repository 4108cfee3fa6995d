package hornql

import (
	"fmt"

	"github.com/hornql/hornql/pkg/lang"
)

// HospitalSchema builds the builtin hospital ontology: the class
// hierarchy, the data properties, and the object properties with
// their inverses. The labelEn/labelAr pair is display metadata only
// and never visible to rules.
func HospitalSchema() *Schema {
	s := NewSchema()

	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("building hospital schema: %v", err))
		}
	}

	must(s.AddClass("Person"))
	must(s.AddClass("Patient", "Person"))
	must(s.AddClass("ElderlyPatient", "Patient"))
	must(s.AddClass("Doctor", "Person"))
	must(s.AddClass("SeniorDoctor", "Doctor"))
	must(s.AddClass("Appointment"))
	must(s.AddClass("CancelledAppointment", "Appointment"))
	must(s.AddClass("NoShowAppointment", "Appointment"))
	must(s.AddClass("Treatment"))
	must(s.AddClass("HighCostTreatment", "Treatment"))
	must(s.AddClass("Bill"))
	must(s.AddClass("DelinquentAccount", "Bill"))
	must(s.AddClass("Hospital"))
	must(s.AddClass("InsuranceProvider"))
	must(s.AddClass("MedicalSpecialization"))

	must(s.AddAttribute("firstName", lang.TString))
	must(s.AddAttribute("lastName", lang.TString))
	must(s.AddAttribute("yearsExperience", lang.TInt))
	must(s.AddAttribute("cost", lang.TDecimal))
	must(s.AddAttribute("amount", lang.TDecimal))
	must(s.AddAttribute("coverageLimit", lang.TDecimal))
	must(s.AddAttribute("dateOfBirth", lang.TDate))
	must(s.AddAttribute("appointmentDate", lang.TDate))
	must(s.AddAttribute("treatmentDate", lang.TDate))
	must(s.AddAttribute("dueDate", lang.TDate))
	must(s.AddAttribute("status", lang.NewTEnum("Status",
		"Scheduled", "Completed", "Cancelled", "No-show")))
	must(s.AddAttribute("isAvailable", lang.TBool))
	must(s.AddAttribute("treatmentType", lang.TString))
	must(s.AddAttribute("description", lang.TString))
	must(s.AddAttribute("reasonForVisit", lang.TString))
	must(s.AddDisplayAttribute("labelEn"))
	must(s.AddDisplayAttribute("labelAr"))

	must(s.AddRelation("hasAppointment", "isAppointmentOf"))
	must(s.AddRelation("worksAt", "hasStaff"))
	must(s.AddRelation("supervisedBy", "supervises"))
	must(s.AddRelation("resultsIn", "isResultOf"))
	must(s.AddRelation("hasInsurance", "insures"))
	must(s.AddRelation("hasSpecialization", "specializationOf"))
	must(s.AddRelation("generates", "isGeneratedBy"))

	return s
}

// HospitalRules renders the builtin classification rules with the
// configured thresholds baked into the rule text. Rendering through
// the parser keeps rule validation on one path whether rules are
// builtin or handwritten.
func HospitalRules(cfg Config) string {
	seniorCmp := "greaterThan"
	if cfg.SeniorInclusive {
		seniorCmp = "atLeast"
	}
	return fmt.Sprintf(`
rule SeniorDoctor:
  Doctor(?d) ^ yearsExperience(?d, ?y) ^ %s(?y, %d)
  -> SeniorDoctor(?d).

rule HighCostTreatment:
  Treatment(?t) ^ cost(?t, ?c) ^ greaterThan(?c, %g)
  -> HighCostTreatment(?t).

rule ElderlyPatient:
  Patient(?p) ^ dateOfBirth(?p, ?b) ^ ageAtLeast(?b, %d)
  -> ElderlyPatient(?p).

rule DelinquentAccount:
  Bill(?b) ^ dueDate(?b, ?d) ^ overdueAtLeast(?d, %d)
  -> DelinquentAccount(?b).
`, seniorCmp, cfg.SeniorYears, cfg.HighCostThreshold, cfg.ElderlyAge, cfg.DelinquentDays)
}

// NewHospitalEngine wires the builtin schema's store to the builtin
// rules under one config.
func NewHospitalEngine(store *Store, cfg Config) (*Engine, error) {
	set, err := ParseRules(HospitalRules(cfg))
	if err != nil {
		return nil, err
	}
	return NewEngine(store, set, cfg)
}
