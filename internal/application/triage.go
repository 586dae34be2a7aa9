package app

import "opd-scanner/internal/domain/entity"

// Пороги локальных правил сортировки
const (
	BruiseRednessMin  = 0.08 // краснота, при которой синяк считается травмой мягких тканей
	InflammationMin   = 0.15 // краснота, при которой подозреваем воспаление
	NoVisibleRedness  = 0.03 // ниже этого значения кожа считается чистой
	HighPain          = entity.PainLevel(7)
	UnusuallyHighPain = entity.PainLevel(8)
)

const (
	adviceBruise = "Apply ice, avoid pressure on the area and rest. " +
		"If pain increases, consider imaging such as an X-ray."

	adviceRedness = "Likely inflammation. Rest, apply ice and monitor the area for swelling."

	adviceHiddenPain = "No external injury detected. Internal injuries cannot be excluded visually; " +
		"imaging such as an X-ray or a clinical examination is recommended."

	adviceHiddenPainSevere = "No visible injury, but the pain level is unusually high. " +
		"Internal issues require imaging such as an X-ray; seek an in-person evaluation."

	adviceMild = "Could not identify a clear injury. Follow RICE: rest, ice, compress, elevate. " +
		"Re-scan or get an in-person evaluation if symptoms persist."
)

// Classify применяет локальные правила. Порядок правил важен:
// срабатывает первое подходящее.
func Classify(in entity.TriageInput) entity.TriageResult {
	a := in.Analysis

	switch {
	case a.BruiseDetected && a.Redness > BruiseRednessMin:
		return local(entity.ClassBruise, adviceBruise)

	case a.Redness > InflammationMin:
		return local(entity.ClassRedness, adviceRedness)

	case a.Redness < NoVisibleRedness && !a.BruiseDetected && in.Pain >= HighPain:
		if in.Pain >= UnusuallyHighPain {
			return local(entity.ClassHiddenPain, adviceHiddenPainSevere)
		}
		return local(entity.ClassHiddenPain, adviceHiddenPain)

	default:
		return local(entity.ClassMildOrUnclear, adviceMild)
	}
}

func local(label entity.Classification, advice string) entity.TriageResult {
	return entity.TriageResult{Label: label, Advice: advice, Source: entity.SourceLocal}
}
