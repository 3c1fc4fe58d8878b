package render

// ClampProgress limits a goal percentage to the progress bar range.
func ClampProgress(p float64) float64 {
	return min(max(p, 0), 100)
}

// ProgressLabel describes how far along a goal is. A goal without a
// progress value counts as 0.
func ProgressLabel(p *float64) string {
	var v float64
	if p != nil {
		v = *p
	}
	switch {
	case v >= 100:
		return "Concluído"
	case v >= 75:
		return "Quase lá"
	case v >= 50:
		return "No caminho"
	case v >= 25:
		return "Iniciando"
	default:
		return "Começar"
	}
}
