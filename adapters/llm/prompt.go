package llm

import "fmt"

// buildPrompt asks for the translation only, without commentary
func buildPrompt(domain, text, sourceLang, targetLang string) string {
	return fmt.Sprintf("Translate the following %s context text from %s to %s: %q",
		domain, sourceLang, targetLang, text)
}

// systemInstruction is sent to chat-style providers that take a separate system role
func systemInstruction(domain string) string {
	return fmt.Sprintf("You are a professional %s interpreter. Reply with the translated text only, "+
		"without quotes, notes or explanations.", domain)
}
