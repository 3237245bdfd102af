package opc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

type relsXML struct {
	XMLName      xml.Name     `xml:"Relationships"`
	Xmlns        string       `xml:"xmlns,attr"`
	Relationship []relXMLItem `xml:"Relationship"`
}

type relXMLItem struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// ParseRelationships parses a .rels part's bytes into SerializedRelationships
// rooted at baseURI (the directory of the part the .rels belongs to).
func ParseRelationships(blob []byte, baseURI string) ([]SerializedRelationship, error) {
	var doc relsXML
	if err := xml.Unmarshal(blob, &doc); err != nil {
		return nil, NewMalformedPackageError(err, "opc: parsing relationships: %v", err)
	}
	srels := make([]SerializedRelationship, 0, len(doc.Relationship))
	for _, r := range doc.Relationship {
		mode := TargetModeInternal
		if r.TargetMode == TargetModeExternal {
			mode = TargetModeExternal
		}
		srels = append(srels, SerializedRelationship{
			BaseURI:    baseURI,
			RID:        r.ID,
			RelType:    r.Type,
			TargetRef:  r.Target,
			TargetMode: mode,
		})
	}
	return srels, nil
}

// serializeRelationships renders a Relationships collection as .rels XML,
// in RID order (rId1, rId2, ...) for deterministic output.
func serializeRelationships(rels *Relationships) ([]byte, error) {
	doc := relsXML{Xmlns: relationshipsNamespace}
	for _, rid := range rels.sortedRIDs() {
		rel := rels.byRID[rid]
		item := relXMLItem{ID: rel.RID, Type: rel.RelType}
		if rel.IsExternal {
			item.Target = rel.TargetRef
			item.TargetMode = TargetModeExternal
		} else if rel.TargetPart != nil {
			item.Target = relativeTarget(rels.baseURI, string(rel.TargetPart.PartName()))
		} else {
			// Dangling relationship: preserve the original target reference
			// verbatim so re-serialization round-trips it unchanged.
			item.Target = rel.TargetRef
		}
		doc.Relationship = append(doc.Relationship, item)
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("opc: serializing relationships: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// relativeTarget computes the Target attribute value for a relationship
// pointing from baseURI to an absolute target partname, as a path relative
// to baseURI (e.g. base "/word", target "/word/media/image1.png" yields
// "media/image1.png"; base "/", target "/word/document.xml" yields
// "word/document.xml").
func relativeTarget(baseURI, target string) string {
	baseSegs := splitSegs(baseURI)
	targetSegs := splitSegs(target)

	common := 0
	for common < len(baseSegs) && common < len(targetSegs)-1 && baseSegs[common] == targetSegs[common] {
		common++
	}

	upCount := len(baseSegs) - common
	rel := make([]string, 0, upCount+len(targetSegs)-common)
	for i := 0; i < upCount; i++ {
		rel = append(rel, "..")
	}
	rel = append(rel, targetSegs[common:]...)
	if len(rel) == 0 {
		return "."
	}
	return strings.Join(rel, "/")
}

func splitSegs(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
