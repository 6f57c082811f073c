package proposals

import "fmt"

const (
	placeholderLeveling  = "Enter a prescription to see a leveling proposal tailored to the current regimen."
	placeholderOff       = "Enter a prescription and OFF periods to see an OFF-mitigation proposal."
	placeholderTiming    = "Enter a prescription to see a timing-adjustment proposal."
	placeholderSustain   = "Enter a prescription to see options for prolonging the L-dopa effect."
	placeholderUptitrate = "Enter a prescription to see agonist titration options."
	placeholderDevice    = "Enter a prescription to see whether device or specialised therapy should be discussed."

	// reductionAdvice is appended wherever agonist escalation was withheld
	reductionAdvice = " Note: sleepiness is present, so starting or increasing an agonist is not recommended; prioritise agonist dose reduction or discontinuation and substitute L-dopa where needed."
	// startCaution qualifies a new-agonist suggestion when none is prescribed
	startCaution = " Note: sleepiness is present, so starting an agonist is not recommended."
)

func optimize(title, branch, body string) Item {
	return Item{Title: title, Body: body, Plan: PlanOptimize, Branch: branch}
}

func switchTo(title, branch, body string) Item {
	return Item{Title: title, Body: body, Plan: PlanSwitch, Branch: branch}
}

// sleepinessNote returns the warning suffix for the current agonist state.
// There is nothing to reduce when no agonist is prescribed
func (s signals) sleepinessNote() string {
	switch {
	case !s.companion.Sleepiness:
		return ""
	case s.hasAgonist:
		return reductionAdvice
	default:
		return startCaution
	}
}

func (s signals) leveling() Item {
	if !s.hasActive {
		return optimize(TitleLeveling, BranchPlaceholder, placeholderLeveling)
	}
	total := roundInt(s.total)
	if s.hasDysk {
		return optimize(TitleLeveling, BranchLevelingDyskinesia, fmt.Sprintf(
			"Dyskinesia periods: %s. Keep the total LEDD (%d) unchanged and lower the peak by giving smaller L-dopa doses more often.\n\nExample: %s %smg x%d/day → %s %d～%dmg x%d/day.",
			s.dyskRanges, total,
			s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq,
			s.ldopaBrand, roundInt(s.ldopaDose*0.75), roundInt(s.ldopaDose*0.8), s.ldopaFreq+1,
		))
	}
	return optimize(TitleLeveling, BranchLevelingInterval, fmt.Sprintf(
		"Keep the total LEDD (%d) and shorten long dosing intervals with one more daily administration to smooth plasma levels.\n\nExample: %s %smg x%d/day → %s %smg x%d/day.",
		total,
		s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq,
		s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq+1,
	))
}

func (s signals) offMitigation() Item {
	if !s.hasActive {
		return optimize(TitleOffMitigation, BranchPlaceholder, placeholderOff)
	}
	if !s.hasOff {
		return optimize(TitleOffMitigation, BranchOffMorning, fmt.Sprintf(
			"If the morning response is poor, move the first dose to right after waking, 30 minutes before breakfast.\n\nExample: %s %smg x%d, evenly spaced from right after waking.",
			s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq,
		))
	}

	body := fmt.Sprintf(
		"OFF is most pronounced during %s. Increase the total LEDD by 10-15%% (about %d～%d) or bring the dose forward 30-60 minutes before the OFF period; for a delayed morning ON take it right after waking, 30 minutes before breakfast.",
		s.offRanges, roundInt(s.total*1.10), roundInt(s.total*1.15),
	)
	if s.regimen == RegimenIROnly && !(s.hasAgonist && s.companion.Sleepiness) {
		body += fmt.Sprintf(" With immediate-release L-dopa only, also consider adding or increasing a long-acting agonist (%s).", s.agonistExample)
	}
	body += s.sleepinessNote()
	body += fmt.Sprintf(
		"\n\nExample: %s %smg x%d → %s %d～%dmg x%d, or the same dose 30 minutes before the OFF period.",
		s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq,
		s.ldopaBrand, roundInt(s.ldopaDose*1.10), roundInt(s.ldopaDose*1.15), s.ldopaFreq,
	)
	return optimize(TitleOffMitigation, BranchOffPresent, body)
}

func (s signals) timing() Item {
	if !s.hasActive {
		return optimize(TitleTiming, BranchPlaceholder, placeholderTiming)
	}
	switch {
	case s.regimen == RegimenIROnly && s.hasOff && s.hasAgonist && s.companion.Sleepiness:
		return optimize(TitleTiming, BranchTimingNightWithheld, fmt.Sprintf(
			"If OFF occurs at night or early morning, adjust the bedtime L-dopa dose instead of adding an agonist.%s\n\nExample: %s %smg at bedtime.",
			reductionAdvice, s.ldopaBrand, formatDose(roundHalf(s.ldopaDose)),
		))
	case s.regimen == RegimenIROnly && s.hasOff:
		return optimize(TitleTiming, BranchTimingNightAgonist,
			"If OFF occurs at night or early morning, consider adding an extended-release or patch agonist at bedtime."+s.sleepinessNote()+"\n\nExample: "+s.agonistExample+".")
	case s.regimen == RegimenERMixed:
		return optimize(TitleTiming, BranchTimingERSpacing,
			"Keep the dose and adjust around meals (protein intake) and even spacing.\n\nExample: take L-dopa 30-60 minutes before meals at even intervals.")
	default:
		return optimize(TitleTiming, BranchTimingMealSpacing, fmt.Sprintf(
			"Keep the dose and adjust meal timing (30-60 minutes before meals) and dosing intervals.\n\nExample: %s %smg x3 at 7:00, 12:00 and 18:00, 30 minutes before meals.",
			s.ldopaBrand, formatDose(s.ldopaDose),
		))
	}
}

func (s signals) sustain() Item {
	if !s.hasActive {
		return switchTo(TitleSustain, BranchPlaceholder, placeholderSustain)
	}
	switch {
	case s.hasCOMT && s.hasMAOB:
		example := fmt.Sprintf("%s %smg x%d → x%d", s.ldopaBrand, formatDose(s.ldopaDose), s.ldopaFreq, s.ldopaFreq+1)
		if s.hasAgonist && s.companion.Sleepiness {
			return switchTo(TitleSustain, BranchSustainBoth,
				"Already on a COMT inhibitor and an MAO-B inhibitor. Prolong the effect through L-dopa timing and more frequent dosing."+reductionAdvice+"\n\nExample: "+example+".")
		}
		return switchTo(TitleSustain, BranchSustainBoth,
			"Already on a COMT inhibitor and an MAO-B inhibitor. Prolong the effect through L-dopa timing and more frequent dosing, or by adding an extended-release or patch agonist."+s.sleepinessNote()+"\n\nExample: "+example+", or "+s.agonistExample+".")
	case s.hasCOMT:
		return switchTo(TitleSustain, BranchSustainCOMTOnly,
			"Already on a COMT inhibitor. Consider adding an MAO-B inhibitor or switching to Ongentys for a longer effect."+s.sleepinessNote()+"\n\nExample: Azilect 1mg once daily, Equfina 50mg once daily, or switch to Ongentys 25mg once daily.")
	case s.hasMAOB:
		return switchTo(TitleSustain, BranchSustainMAOBOnly,
			"Already on an MAO-B inhibitor. Adding a COMT inhibitor prolongs each L-dopa dose and shortens OFF time."+s.sleepinessNote()+"\n\nExample: Ongentys 25mg once daily, or Comtan 200mg with every L-dopa dose.")
	default:
		return switchTo(TitleSustain, BranchSustainNeither,
			"Adding a COMT inhibitor or an MAO-B inhibitor prolongs each L-dopa dose and shortens OFF time."+s.sleepinessNote()+"\n\nExample: Ongentys 25mg once daily, Comtan 200mg with every L-dopa dose, Azilect 1mg once daily or Equfina 50mg once daily.")
	}
}

func (s signals) uptitrate() Item {
	if !s.hasActive {
		return switchTo(TitleUptitrate, BranchPlaceholder, placeholderUptitrate)
	}
	switch {
	case s.hasAgonist && s.companion.Sleepiness:
		return switchTo(TitleUptitrate, BranchUptitrateReduce, fmt.Sprintf(
			"Currently on an agonist (%s). Because of sleepiness, increasing it or switching to a long-acting agonist is not recommended. Prioritise agonist dose reduction or discontinuation and substitute L-dopa where needed.\n\nExample: reduce the current agonist by one step and add %s 50mg x1 if OFF worsens.",
			s.agonistList(), s.ldopaBrand,
		))
	case s.hasLongAgonist:
		return switchTo(TitleUptitrate, BranchUptitrateIncrease,
			"Already on a long-acting agonist. For night-time symptoms or OFF, consider increasing the current agonist.\n\nExample: "+s.agonistExample+".")
	case s.hasAgonist:
		return switchTo(TitleUptitrate, BranchUptitrateSwitch, fmt.Sprintf(
			"Consider switching the current agonist (%s) to a long-acting formulation to raise the baseline.\n\nExample: Requip 2mg x3 → Requip CR 4mg once daily, or Mirapex 0.5mg x3 → BI-Sifrol L/A 0.375mg once daily.",
			s.agonistList(),
		))
	default:
		return switchTo(TitleUptitrate, BranchUptitrateStart,
			"Consider adding a long-acting agonist to raise the baseline."+s.sleepinessNote()+"\n\nExample: "+s.agonistExample+".")
	}
}

func (s signals) device() Item {
	if !s.hasActive {
		return switchTo(TitleDevice, BranchPlaceholder, placeholderDevice)
	}
	switch {
	case s.companion.Hallucination && s.hasAgonist:
		return switchTo(TitleDevice, BranchDeviceHallucinationAgonist, fmt.Sprintf(
			"Hallucinations are present. Before considering device therapy, stabilise psychiatric symptoms by reducing the current agonist (%s) and then L-dopa. If OFF or quality of life remains poor once stable, explain device therapy as a medium- to long-term option.",
			s.agonistList(),
		))
	case s.companion.Hallucination:
		return switchTo(TitleDevice, BranchDeviceHallucination,
			"Hallucinations are present. Reduce L-dopa first while watching daily function. Be cautious with device therapy until psychiatric symptoms are controlled and aim for control through oral adjustment.")
	case s.regimen == RegimenDuodopa:
		return switchTo(TitleDevice, BranchDeviceDuodopaReview, fmt.Sprintf(
			"Duodopa is already in use. If OFF periods (%s) or dyskinesia (%s) stand out, review the flow rate, bolus settings and concomitant drugs together with the specialist centre.",
			s.offRanges, s.dyskRanges,
		))
	case (s.hasOff || s.hasDysk) && s.total >= DeviceTherapyThreshold:
		return switchTo(TitleDevice, BranchDeviceNearTerm, fmt.Sprintf(
			"Oral therapy has become complex (LEDD total %d). If OFF periods (%s) or dyskinesia (%s) affect daily life, present device therapy such as Duodopa or DBS as a near-term option.",
			roundInt(s.total), s.offRanges, s.dyskRanges,
		))
	case s.hasOff || s.hasDysk:
		return switchTo(TitleDevice, BranchDeviceInformation, fmt.Sprintf(
			"There is still room for oral adjustment. If OFF periods (%s) or dyskinesia (%s) persist, give information about future device therapy (Duodopa, DBS) and share the medium- to long-term plan with the patient and family.",
			s.offRanges, s.dyskRanges,
		))
	default:
		return switchTo(TitleDevice, BranchDeviceNoEscalation,
			"Oral therapy currently controls symptoms reasonably well and device therapy is not a priority. Give an outline only, as an option for later in the disease course.")
	}
}

// roundHalf halves a dose, keeping whole milligrams
func roundHalf(v float64) float64 {
	return float64(roundInt(v / 2))
}
