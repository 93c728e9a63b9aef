package recall

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
)

// RefusalText is the exact, invariant refusal sentence. Any refusal
// surfaced to the user is byte-identical to this string.
const RefusalText = "I do not have sufficient verified evidence to answer this question."

// Citation is one evidence reference inside a parsed answer.
type Citation struct {
	File         string
	Time         string
	Modality     string
	Confirmation string
}

// Answer is the parsed ANSWER-state output of the reasoner.
type Answer struct {
	Direct        string
	Citations     []Citation
	Context       string
	Confidence    model.Confidence
	Justification string
}

// Response is the validated outcome of one reasoner invocation: either a
// refusal or a well-formed answer. Anything else is a protocol violation
// and never reaches the caller.
type Response struct {
	Refused bool
	Answer  *Answer
	Raw     string
}

// ParseResponse validates the reasoner's raw output against the two
// permitted shapes. Citations must be copied from the supplied evidence;
// an invented citation is a protocol violation.
func ParseResponse(raw string, evidence *model.EvidenceBlock) (*Response, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, goerr.Wrap(model.ErrProtocolViolation, "empty reasoner output")
	}

	if trimmed == RefusalText {
		return &Response{Refused: true, Raw: trimmed}, nil
	}

	answer, err := parseAnswer(trimmed)
	if err != nil {
		return nil, err
	}

	for _, citation := range answer.Citations {
		if !citationMatches(citation, evidence) {
			return nil, goerr.Wrap(model.ErrProtocolViolation, "citation not backed by supplied evidence",
				goerr.V("file", citation.File), goerr.V("time", citation.Time))
		}
	}

	return &Response{Answer: answer, Raw: trimmed}, nil
}

// Sections of the answer shape, in the only order they may appear.
const (
	sectionNone = iota
	sectionAnswer
	sectionEvidence
	sectionContext
	sectionConfidence
)

func parseAnswer(raw string) (*Answer, error) {
	lines := strings.Split(raw, "\n")

	var answer Answer
	var contextLines []string
	section := sectionNone

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "Answer:"):
			if section != sectionNone {
				return nil, goerr.Wrap(model.ErrProtocolViolation, "sections out of order",
					goerr.V("line", trimmed))
			}
			answer.Direct = strings.TrimSpace(strings.TrimPrefix(trimmed, "Answer:"))
			section = sectionAnswer
		case trimmed == "Evidence:":
			if section != sectionAnswer {
				return nil, goerr.Wrap(model.ErrProtocolViolation, "sections out of order",
					goerr.V("line", trimmed))
			}
			section = sectionEvidence
		case strings.HasPrefix(trimmed, "Context:"):
			if section != sectionEvidence {
				return nil, goerr.Wrap(model.ErrProtocolViolation, "sections out of order",
					goerr.V("line", trimmed))
			}
			section = sectionContext
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "Context:")); rest != "" {
				contextLines = append(contextLines, rest)
			}
		case strings.HasPrefix(trimmed, "Confidence:"):
			if section != sectionContext {
				return nil, goerr.Wrap(model.ErrProtocolViolation, "sections out of order",
					goerr.V("line", trimmed))
			}
			section = sectionConfidence
			label, justification, err := parseConfidence(strings.TrimSpace(strings.TrimPrefix(trimmed, "Confidence:")))
			if err != nil {
				return nil, err
			}
			answer.Confidence = label
			answer.Justification = justification
		case section == sectionEvidence && strings.HasPrefix(trimmed, "-"):
			citation, err := parseCitation(strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
			if err != nil {
				return nil, err
			}
			answer.Citations = append(answer.Citations, citation)
		case section == sectionContext && trimmed != "":
			contextLines = append(contextLines, trimmed)
		case trimmed == "":
			// blank lines are permitted between sections
		case section == sectionAnswer:
			// the direct answer must be a single line
			return nil, goerr.Wrap(model.ErrProtocolViolation, "direct answer spans multiple lines")
		default:
			return nil, goerr.Wrap(model.ErrProtocolViolation, "unexpected line in reasoner output",
				goerr.V("line", trimmed))
		}
	}

	answer.Context = strings.Join(contextLines, "\n")

	if answer.Direct == "" {
		return nil, goerr.Wrap(model.ErrProtocolViolation, "missing direct answer")
	}
	if len(answer.Citations) == 0 {
		return nil, goerr.Wrap(model.ErrProtocolViolation, "missing evidence citations")
	}
	if answer.Context == "" {
		return nil, goerr.Wrap(model.ErrProtocolViolation, "missing context block")
	}
	if answer.Confidence == "" {
		return nil, goerr.Wrap(model.ErrProtocolViolation, "missing confidence label")
	}

	return &answer, nil
}

func parseConfidence(rest string) (model.Confidence, string, error) {
	label, justification, found := strings.Cut(rest, "—")
	if !found {
		label, justification, found = strings.Cut(rest, " - ")
	}
	if !found {
		return "", "", goerr.Wrap(model.ErrProtocolViolation, "confidence line lacks justification",
			goerr.V("line", rest))
	}

	confidence := model.Confidence(strings.TrimSpace(label))
	if err := confidence.Validate(); err != nil {
		return "", "", goerr.Wrap(model.ErrProtocolViolation, "confidence label outside closed set",
			goerr.V("label", label))
	}

	justification = strings.TrimSpace(justification)
	if justification == "" {
		return "", "", goerr.Wrap(model.ErrProtocolViolation, "empty confidence justification")
	}

	return confidence, justification, nil
}

func parseCitation(rest string) (Citation, error) {
	var citation Citation
	for _, field := range strings.Fields(rest) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			return Citation{}, goerr.Wrap(model.ErrProtocolViolation, "malformed citation field",
				goerr.V("field", field))
		}
		switch key {
		case "file":
			citation.File = value
		case "time":
			citation.Time = value
		case "modality":
			citation.Modality = value
		case "confirmation":
			citation.Confirmation = value
		default:
			return Citation{}, goerr.Wrap(model.ErrProtocolViolation, "unknown citation field",
				goerr.V("field", field))
		}
	}

	if citation.File == "" || citation.Time == "" || citation.Modality == "" || citation.Confirmation == "" {
		return Citation{}, goerr.Wrap(model.ErrProtocolViolation, "incomplete citation", goerr.V("citation", rest))
	}

	return citation, nil
}

func citationMatches(citation Citation, evidence *model.EvidenceBlock) bool {
	if evidence.Empty() {
		return false
	}

	for _, entry := range evidence.Entries {
		name := entry.FileName
		if name == "" {
			name = entry.SourceURI
		}
		if citation.File != name && citation.File != entry.SourceURI {
			continue
		}
		if citation.Time != entry.CapturedAt.UTC().Format(time.RFC3339) {
			continue
		}
		if citation.Modality != string(entry.Modality) {
			continue
		}
		if citation.Confirmation != string(entry.Confirmation) {
			continue
		}
		return true
	}

	return false
}
