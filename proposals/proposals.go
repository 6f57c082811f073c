// Package proposals derives the six "next step" treatment proposals from the
// computed LEDD, the symptom timeline and companion symptoms
package proposals

import (
	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/ledd"
	"github.com/dopaplan/dopaplan-api/timeline"
)

// Plan tags a proposal as optimizing the current drugs or switching/adding
type Plan string

const (
	PlanOptimize Plan = "OPTIMIZE"
	PlanSwitch   Plan = "SWITCH"
)

// Item is one generated proposal. Branch names the rule that produced Body
type Item struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Plan   Plan   `json:"plan"`
	Branch string `json:"branch"`
}

// CompanionSymptoms are the checkbox flags entered next to the timeline
type CompanionSymptoms struct {
	Sleepiness    bool `json:"sleepiness"`
	Nausea        bool `json:"nausea"`
	Tremor        bool `json:"tremor"`
	Axial         bool `json:"axial"`
	Cognitive     bool `json:"cognitive"`
	Hallucination bool `json:"hallucination"`
}

// Regimen classifies how L-dopa is delivered
type Regimen string

const (
	RegimenNone    Regimen = "NONE"
	RegimenIROnly  Regimen = "IR_ONLY"
	RegimenERMixed Regimen = "ER_OR_MIXED"
	RegimenDuodopa Regimen = "DUODOPA"
)

// DeviceTherapyThreshold is the total LEDD from which device therapy is
// presented as a near-term option
const DeviceTherapyThreshold = 800.0

// Proposal titles, in output order
const (
	TitleLeveling      = "Proposal 1 (Leveling)"
	TitleOffMitigation = "Proposal 2 (OFF mitigation)"
	TitleTiming        = "Proposal 3 (Timing)"
	TitleSustain       = "Proposal 1 (Sustain)"
	TitleUptitrate     = "Proposal 2 (Uptitrate)"
	TitleDevice        = "Proposal 3 (Device/Specialized)"
)

// Branch keys
const (
	BranchPlaceholder = "placeholder"

	BranchLevelingDyskinesia = "dyskinesia"
	BranchLevelingInterval   = "interval"

	BranchOffPresent = "off"
	BranchOffMorning = "morning"

	BranchTimingNightAgonist  = "ir_night_agonist"
	BranchTimingNightWithheld = "ir_night_withheld"
	BranchTimingERSpacing     = "er_meal_spacing"
	BranchTimingMealSpacing   = "meal_spacing"

	BranchSustainBoth     = "comt_maob"
	BranchSustainCOMTOnly = "comt_only"
	BranchSustainMAOBOnly = "maob_only"
	BranchSustainNeither  = "no_inhibitor"

	BranchUptitrateReduce   = "agonist_reduce"
	BranchUptitrateIncrease = "long_acting_increase"
	BranchUptitrateSwitch   = "switch_long_acting"
	BranchUptitrateStart    = "start_long_acting"

	BranchDeviceHallucinationAgonist = "hallucination_agonist"
	BranchDeviceHallucination        = "hallucination"
	BranchDeviceDuodopaReview        = "duodopa_review"
	BranchDeviceNearTerm             = "device_near_term"
	BranchDeviceInformation          = "device_information"
	BranchDeviceNoEscalation         = "no_escalation"
)

// Engine generates proposals against a reference catalog
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine returns an engine bound to cat
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Generate always returns six items: three OPTIMIZE followed by three
// SWITCH, in title order. It never fails; missing input selects the
// placeholder or context-free branches
func (e *Engine) Generate(summary ledd.Summary, tl timeline.Timeline, companion CompanionSymptoms, entries []ledd.EntryWithEquivalence) []Item {
	s := e.derive(summary, tl, companion, entries)

	return []Item{
		s.leveling(),
		s.offMitigation(),
		s.timing(),
		s.sustain(),
		s.uptitrate(),
		s.device(),
	}
}

// SleepinessWarning returns the banner shown above the proposals when
// sleepiness is reported
func SleepinessWarning(companion CompanionSymptoms) (string, bool) {
	if !companion.Sleepiness {
		return "", false
	}
	return "Sleepiness present → agonist escalation is not recommended. Prioritise dose reduction or discontinuation.", true
}
