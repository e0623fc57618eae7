package summarizer

import "fmt"

// DirectPrompt asks for a Markdown summary of the whole text in about wordCount words.
func DirectPrompt(text string, wordCount int) string {
	return fmt.Sprintf("Provide a summary of the following text in about %d words. "+
		"Format the summary strictly as Markdown: use headings, bullet points and bold emphasis where useful. "+
		"Respond with the summary only.\n\n---\n\n%s", wordCount, text)
}

// MapPrompt asks for a concise, key-points-only summary of one chunk.
func MapPrompt(chunk string) string {
	return fmt.Sprintf("Write a concise summary of the following part of a larger document. "+
		"Focus only on the key points.\n\n---\n\n%s", chunk)
}

// ReducePrompt asks the model to merge partial summaries into one text of about targetWords words.
func ReducePrompt(combined string, targetWords int) string {
	return fmt.Sprintf("The following are summaries of consecutive parts of one document. "+
		"Condense and combine them into a single coherent summary of about %d words. "+
		"Format the summary strictly as Markdown: use headings, bullet points and bold emphasis where useful. "+
		"Respond with the summary only.\n\n---\n\n%s", targetWords, combined)
}
