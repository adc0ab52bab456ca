package pptx

import "strconv"

// transitionSpeeds maps the legacy spd attribute to a duration when no
// explicit dur is present.
var transitionSpeeds = map[string]int64{
	"fast": 500,
	"med":  750,
	"slow": 1000,
}

// readTransition reads p:transition, looking inside mc:AlternateContent
// (Choice first, then Fallback) when the slide has no plain element.
func readTransition(sld *slideXML) *Transition {
	n := sld.Transition
	if n == nil {
		for i := range sld.AlternateContent {
			ac := &sld.AlternateContent[i]
			for _, branch := range []string{"Choice", "Fallback"} {
				if t := ac.Path(branch, "transition"); t != nil {
					n = t
					break
				}
			}
			if n != nil {
				break
			}
		}
	}
	if n == nil {
		return nil
	}

	t := &Transition{OnClick: true}
	if kids := n.Elements(); len(kids) > 0 {
		t.Type = kids[0].Name()
	}
	t.Speed, _ = n.Attr("spd")
	if v, ok := n.Attr("dur"); ok {
		t.Duration = parseInt(v)
	} else if ms, ok := transitionSpeeds[t.Speed]; ok {
		t.Duration = &ms
	}
	if v, ok := n.Attr("advClick"); ok {
		t.OnClick = v != "0" && v != "false"
	}
	if v, ok := n.Attr("advTm"); ok {
		t.After = parseInt(v)
	}
	return t
}

func parseInt(v string) *int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
