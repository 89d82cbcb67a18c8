package recommend

// LegacyStatus is the coarse status older clients understand.
type LegacyStatus string

const (
	LegacyProgress LegacyStatus = "progress"
	LegacyMaintain LegacyStatus = "maintain"
	LegacyDeload   LegacyStatus = "deload"
)

//nolint:gochecknoglobals // static mapping
var legacyStatuses = map[Status]LegacyStatus{
	StatusProgressing:      LegacyProgress,
	StatusPlateau:          LegacyMaintain,
	StatusRegressing:       LegacyDeload,
	StatusInsufficientData: LegacyMaintain,
	StatusBenchmarkMode:    LegacyMaintain,
	StatusProgressive:      LegacyProgress,
}

// LegacyRecommendation is the flat recommendation shape of older clients.
type LegacyRecommendation struct {
	Exercise       string       `json:"exercise"`
	Sets           int          `json:"sets"`
	TargetReps     int          `json:"targetReps"`
	WeightKg       *float64     `json:"weightKg"`
	RestSeconds    int          `json:"restSeconds"`
	TrainingStatus LegacyStatus `json:"trainingStatus"`
	Rationale      string       `json:"rationale"`
}

// ToLegacy flattens rec. It returns nil only for a nil rec.
func ToLegacy(rec *Recommendation) *LegacyRecommendation {
	if rec == nil {
		return nil
	}

	// An explicit target wins, otherwise the lower bound of the rep range, which is the rep
	// count itself for a specific number.
	targetReps := rec.Prescription.Reps.Min
	if rec.Prescription.TargetReps != nil {
		targetReps = *rec.Prescription.TargetReps
	}

	status, ok := legacyStatuses[rec.TrainingStatus]
	if !ok {
		status = LegacyMaintain
	}
	if rec.HasFlag(FlagRecoveryWeekRecommended) {
		status = LegacyDeload
	}

	var weight *float64
	if rec.Prescription.WeightKg != nil {
		w := *rec.Prescription.WeightKg
		weight = &w
	}

	return &LegacyRecommendation{
		Exercise:       rec.Exercise,
		Sets:           rec.Prescription.Sets.Min,
		TargetReps:     targetReps,
		WeightKg:       weight,
		RestSeconds:    rec.Prescription.RestSeconds,
		TrainingStatus: status,
		Rationale:      rec.Rationale,
	}
}
