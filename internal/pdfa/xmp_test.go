package pdfa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildXMP_Declarations(t *testing.T) {
	packet := string(buildXMP("FX-2026-000001"))

	assert.Contains(t, packet, "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, packet, "<pdfaid:conformance>B</pdfaid:conformance>")
	assert.Contains(t, packet, "<fx:DocumentType>INVOICE</fx:DocumentType>")
	assert.Contains(t, packet, "<fx:DocumentFileName>factur-x.xml</fx:DocumentFileName>")
	assert.Contains(t, packet, "<fx:Version>1.0</fx:Version>")
	assert.Contains(t, packet, "<fx:ConformanceLevel>BASIC</fx:ConformanceLevel>")
	assert.Contains(t, packet, "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#")
	assert.Contains(t, packet, `<rdf:li xml:lang="x-default">FX-2026-000001</rdf:li>`)
}

func TestBuildXMP_Deterministic(t *testing.T) {
	assert.Equal(t, buildXMP("INV-1"), buildXMP("INV-1"),
		"packet carries no timestamps, so output is stable")
}

func TestBuildXMP_EscapesTitle(t *testing.T) {
	packet := string(buildXMP("A&B <Ltd>"))

	assert.Contains(t, packet, "A&amp;B &lt;Ltd&gt;")
	assert.False(t, strings.Contains(packet, "A&B <Ltd>"))
}
