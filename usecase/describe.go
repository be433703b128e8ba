package usecase

import "strings"

// objectLeadIn is the fixed phrase the assistant is prompted to open with
// when it has settled on an object to build. Everything after the phrase is
// the object description.
const objectLeadIn = "let's create"

// ExtractObjectDescription pulls the object description out of an assistant
// reply. A reply without the lead-in phrase is a conversational follow-up and
// produces no object this turn.
func ExtractObjectDescription(reply string) (string, bool) {
	lower := strings.ToLower(reply)

	idx := strings.Index(lower, objectLeadIn)
	length := len(objectLeadIn)
	if idx < 0 {
		// Some transcription paths drop the apostrophe.
		idx = strings.Index(lower, "lets create")
		length = len("lets create")
	}
	if idx < 0 {
		return "", false
	}

	description := strings.TrimSpace(reply[idx+length:])
	description = strings.TrimRight(description, ".!? ")
	if description == "" {
		return "", false
	}
	return description, true
}
