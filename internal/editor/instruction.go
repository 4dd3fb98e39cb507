package editor

import "strings"

// BuildInstruction turns the free-text prompt into the instruction sent with
// the source image. The prompt passes through as given; a short guard clause
// keeps the model from redrawing the whole scene.
func BuildInstruction(prompt string) string {
	parts := []string{}
	if p := strings.TrimSpace(prompt); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, "Apply the edit to the attached photo. Keep the subject, composition and proportions of the original.")
	return strings.Join(parts, " ")
}
