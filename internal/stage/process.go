package stage

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
)

// Processor is the marker for a concrete stage implementation. A processor
// implements exactly one of the style interfaces below; implementing more
// than one is a stage-authoring defect (ErrAmbiguousProcess). Implementing
// none gives the identity style: output equals input unchanged.
type Processor interface{}

// TextProcessor consumes the concatenated input text and returns a
// replacement text, stored as the sole output fragment.
type TextProcessor interface {
	ProcessText(ctx context.Context, input string) (string, error)
}

// DataProcessor consumes the full ordered input fragment collection and
// returns a full ordered output collection.
type DataProcessor interface {
	ProcessData(ctx context.Context, input artifact.Data) (artifact.Data, error)
}

// TextSplitter consumes the concatenated input text and returns an ordered
// output collection, splitting one unit into many.
type TextSplitter interface {
	ProcessTextToData(ctx context.Context, input string) (artifact.Data, error)
}

// Process style identifiers, reported for logging and testing.
const (
	StyleText     = "text"
	StyleData     = "dict"
	StyleSplit    = "text_to_dict"
	StyleIdentity = "identity"
)

// StyleOf classifies a processor by the single style it implements. Probe
// order is fixed: text, dict, text_to_dict. A processor implementing more
// than one fails with ErrAmbiguousProcess naming the style already
// selected.
func StyleOf(p Processor) (string, error) {
	style := ""
	if _, ok := p.(TextProcessor); ok {
		style = StyleText
	}
	if _, ok := p.(DataProcessor); ok {
		if style != "" {
			return "", fmt.Errorf("%w: %s already selected", ErrAmbiguousProcess, style)
		}
		style = StyleData
	}
	if _, ok := p.(TextSplitter); ok {
		if style != "" {
			return "", fmt.Errorf("%w: %s already selected", ErrAmbiguousProcess, style)
		}
		style = StyleSplit
	}
	if style == "" {
		style = StyleIdentity
	}
	return style, nil
}

// Dispatch selects the processor's style and runs it over the input,
// returning the output fragments and the style identifier used. A nil
// processor is the identity style.
func Dispatch(ctx context.Context, p Processor, input artifact.Data) (artifact.Data, string, error) {
	if p == nil {
		return input.Clone(), StyleIdentity, nil
	}

	style, err := StyleOf(p)
	if err != nil {
		return nil, "", err
	}

	switch style {
	case StyleText:
		out, err := p.(TextProcessor).ProcessText(ctx, input.Text())
		if err != nil {
			return nil, style, err
		}
		return artifact.FromText(out), style, nil
	case StyleData:
		out, err := p.(DataProcessor).ProcessData(ctx, input.Clone())
		if err != nil {
			return nil, style, err
		}
		return out, style, nil
	case StyleSplit:
		out, err := p.(TextSplitter).ProcessTextToData(ctx, input.Text())
		if err != nil {
			return nil, style, err
		}
		return out, style, nil
	default:
		return input.Clone(), StyleIdentity, nil
	}
}
