package animation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tsawler/deckparse/opc"
)

// Typical click-to-appear timing: root par > mainSeq seq > click par >
// with par > effect par > set + animEffect leaves.
const clickTiming = `<p:timing xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:tnLst>
    <p:par>
      <p:cTn id="1" dur="indefinite" restart="never" nodeType="tmRoot">
        <p:childTnLst>
          <p:seq concurrent="1" nextAc="seek">
            <p:cTn id="2" dur="indefinite" nodeType="mainSeq">
              <p:childTnLst>
                <p:par>
                  <p:cTn id="3" fill="hold">
                    <p:stCondLst><p:cond delay="indefinite"/></p:stCondLst>
                    <p:childTnLst>
                      <p:par>
                        <p:cTn id="4" fill="hold">
                          <p:stCondLst><p:cond delay="0"/></p:stCondLst>
                          <p:childTnLst>
                            <p:par>
                              <p:cTn id="5" presetID="10" presetClass="entr" nodeType="clickEffect" fill="hold">
                                <p:stCondLst><p:cond delay="250"/></p:stCondLst>
                                <p:childTnLst>
                                  <p:set>
                                    <p:cBhvr>
                                      <p:cTn id="6" dur="1" fill="hold"><p:stCondLst><p:cond delay="0"/></p:stCondLst></p:cTn>
                                      <p:tgtEl><p:spTgt spid="4"/></p:tgtEl>
                                    </p:cBhvr>
                                  </p:set>
                                  <p:animEffect transition="in" filter="fade">
                                    <p:cBhvr>
                                      <p:cTn id="7" dur="500"/>
                                      <p:tgtEl><p:spTgt spid="4"/></p:tgtEl>
                                    </p:cBhvr>
                                  </p:animEffect>
                                  <p:audio>
                                    <p:cMediaNode><p:cTn id="8"/><p:tgtEl><p:sndTgt r:embed="rId2" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/></p:tgtEl></p:cMediaNode>
                                  </p:audio>
                                </p:childTnLst>
                              </p:cTn>
                            </p:par>
                          </p:childTnLst>
                        </p:cTn>
                      </p:par>
                    </p:childTnLst>
                  </p:cTn>
                </p:par>
              </p:childTnLst>
            </p:cTn>
            <p:prevCondLst/>
          </p:seq>
        </p:childTnLst>
      </p:cTn>
    </p:par>
  </p:tnLst>
</p:timing>`

func parseTiming(t *testing.T, xml string) *Container {
	t.Helper()
	n, err := opc.ParseNode([]byte(xml))
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	root, ok := ParseTiming(n)
	if !ok {
		t.Fatal("ParseTiming reported no tree")
	}
	return root
}

func TestParseTiming_Structure(t *testing.T) {
	root := parseTiming(t, clickTiming)

	if root.Kind != Parallel || root.Trigger != "tmRoot" {
		t.Errorf("root = %s/%s, want parallel/tmRoot", root.Kind, root.Trigger)
	}
	if root.Duration != nil {
		t.Errorf("indefinite duration = %d, want unset", *root.Duration)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}

	seq, ok := root.Children[0].(*Container)
	if !ok || seq.Kind != Sequence || seq.Trigger != "mainSeq" {
		t.Fatalf("root child = %#v, want mainSeq sequence", root.Children[0])
	}

	click := seq.Children[0].(*Container)
	if click.Delay != nil {
		t.Errorf("click delay = %d, want unset for indefinite", *click.Delay)
	}
	with := click.Children[0].(*Container)
	if with.Delay == nil || *with.Delay != 0 {
		t.Errorf("with delay = %v, want 0", with.Delay)
	}

	effect := with.Children[0].(*Container)
	if effect.Trigger != "clickEffect" || effect.PresetClass != "entr" {
		t.Errorf("effect container = %s/%s", effect.Trigger, effect.PresetClass)
	}
	if effect.Delay == nil || *effect.Delay != 250 {
		t.Errorf("effect delay = %v, want 250", effect.Delay)
	}
	if len(effect.Children) != 3 {
		t.Fatalf("effect children = %d, want 3", len(effect.Children))
	}

	set := effect.Children[0].(*Effect)
	if set.TargetShapeID != "4" || set.EffectType != EffectUnknown {
		t.Errorf("set leaf = %+v", set)
	}
	if set.Duration == nil || *set.Duration != 1 {
		t.Errorf("set duration = %v, want 1", set.Duration)
	}
	fade := effect.Children[1].(*Effect)
	if fade.Duration == nil || *fade.Duration != 500 {
		t.Errorf("fade duration = %v, want 500", fade.Duration)
	}
	audio := effect.Children[2].(*Effect)
	if audio.TargetShapeID != "" {
		t.Errorf("audio target = %q, want none", audio.TargetShapeID)
	}
}

// assertShape walks the tree checking that every node is exactly one of the
// two shapes and returns the depth reached.
func assertShape(t *testing.T, n Node, depth int) int {
	t.Helper()
	switch v := n.(type) {
	case *Container:
		if v.Children == nil {
			t.Errorf("container at depth %d has nil children", depth)
		}
		deepest := depth
		for _, c := range v.Children {
			deepest = max(deepest, assertShape(t, c, depth+1))
		}
		return deepest
	case *Effect:
		if v.EffectType != EffectUnknown {
			t.Errorf("leaf effect type = %q, want unknown", v.EffectType)
		}
		return depth
	default:
		t.Fatalf("unexpected node type %T", n)
	}
	return depth
}

func TestParseTiming_ShapePreservation(t *testing.T) {
	root := parseTiming(t, clickTiming)
	if depth := assertShape(t, root, 0); depth < 3 {
		t.Errorf("depth = %d, want at least 3", depth)
	}
}

func TestParse_ChildOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<p:seq xmlns:p="p"><p:cTn id="1"><p:childTnLst>`)
	ids := []string{"10", "11", "12", "13", "14"}
	for i, id := range ids {
		if i%2 == 0 {
			b.WriteString(`<p:set><p:cBhvr><p:cTn/><p:tgtEl><p:spTgt spid="` + id + `"/></p:tgtEl></p:cBhvr></p:set>`)
		} else {
			b.WriteString(`<p:par><p:cTn id="` + id + `"><p:childTnLst/></p:cTn></p:par>`)
		}
	}
	b.WriteString(`</p:childTnLst></p:cTn></p:seq>`)

	n, err := opc.ParseNode([]byte(b.String()))
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	c, ok := Parse(n).(*Container)
	if !ok || c.Kind != Sequence {
		t.Fatalf("Parse(seq) = %#v", c)
	}
	if len(c.Children) != len(ids) {
		t.Fatalf("children = %d, want %d", len(c.Children), len(ids))
	}
	for i, child := range c.Children {
		switch v := child.(type) {
		case *Effect:
			if i%2 != 0 || v.TargetShapeID != ids[i] {
				t.Errorf("child %d = effect %q", i, v.TargetShapeID)
			}
		case *Container:
			if i%2 != 1 || len(v.Children) != 0 {
				t.Errorf("child %d = container with %d children", i, len(v.Children))
			}
		}
	}
}

func TestParseTiming_Absent(t *testing.T) {
	if _, ok := ParseTiming(nil); ok {
		t.Error("nil timing should report no tree")
	}
	n, _ := opc.ParseNode([]byte(`<p:timing xmlns:p="p"><p:bldLst/></p:timing>`))
	if _, ok := ParseTiming(n); ok {
		t.Error("timing without tnLst should report no tree")
	}
}

func TestParseTiming_WrapsLeafRoot(t *testing.T) {
	root := parseTiming(t, `<p:timing xmlns:p="p"><p:tnLst><p:set><p:cBhvr><p:cTn/><p:tgtEl><p:spTgt spid="9"/></p:tgtEl></p:cBhvr></p:set></p:tnLst></p:timing>`)
	if root.Kind != Parallel || len(root.Children) != 1 {
		t.Fatalf("root = %+v", root)
	}
	if e, ok := root.Children[0].(*Effect); !ok || e.TargetShapeID != "9" {
		t.Errorf("wrapped child = %#v", root.Children[0])
	}
}

func TestJSON_KindDiscriminator(t *testing.T) {
	d := int64(500)
	tree := &Container{Kind: Sequence, Children: []Node{
		&Effect{Timing: Timing{Duration: &d}, TargetShapeID: "3", EffectType: EffectUnknown},
	}}
	out, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"kind":"sequence","children":[{"kind":"effect","duration":500,"targetShapeId":"3","effectType":"unknown"}]}`
	if string(out) != want {
		t.Errorf("json = %s\nwant   %s", out, want)
	}
	if TimingOf(tree.Children[0]).Duration == nil {
		t.Error("TimingOf lost the duration")
	}
}
