package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// StyleXML is a small, grammar-conformant independent style with inline
// locales, macros, a citation and a bibliography.
const StyleXML = `<?xml version="1.0" encoding="utf-8"?>
<style xmlns="http://purl.org/net/xbiblio/csl" class="in-text" version="1.0" default-locale="en-US" demote-non-dropping-particle="never">
  <!-- comments are dropped by the loader -->
  <info>
    <title>Test Author-Date</title>
    <id>http://www.zotero.org/styles/apa</id>
    <link href="http://www.zotero.org/styles/apa" rel="self"/>
    <author>
      <name>Jane Doe</name>
      <email>jane@example.org</email>
    </author>
    <category citation-format="author-date"/>
    <category field="psychology"/>
    <updated>2020-01-01T00:00:00+00:00</updated>
    <rights license="http://creativecommons.org/licenses/by-sa/3.0/">CC BY-SA 3.0</rights>
  </info>
  <locale xml:lang="de">
    <terms>
      <term name="and">und auch</term>
    </terms>
  </locale>
  <locale>
    <terms>
      <term name="editor" form="short">
        <single>ed.</single>
        <multiple>eds.</multiple>
      </term>
    </terms>
  </locale>
  <macro name="author">
    <names variable="author">
      <name name-as-sort-order="all" and="symbol" sort-separator=", " initialize-with=". " delimiter=", " delimiter-precedes-last="always"/>
      <label form="short" prefix=" (" suffix=")"/>
      <substitute>
        <names variable="editor"/>
        <text variable="title"/>
      </substitute>
    </names>
  </macro>
  <macro name="issued">
    <choose>
      <if variable="issued">
        <date variable="issued">
          <date-part name="year"/>
        </date>
      </if>
      <else>
        <text term="no date" form="short"/>
      </else>
    </choose>
  </macro>
  <citation et-al-min="6" et-al-use-first="1" disambiguate-add-year-suffix="true" collapse="year">
    <sort>
      <key macro="author"/>
      <key macro="issued"/>
    </sort>
    <layout prefix="(" suffix=")" delimiter="; ">
      <group delimiter=", ">
        <text macro="author"/>
        <text macro="issued"/>
      </group>
    </layout>
  </citation>
  <bibliography hanging-indent="true" entry-spacing="0">
    <sort>
      <key macro="author"/>
    </sort>
    <layout suffix=".">
      <group delimiter=". ">
        <text macro="author"/>
        <text macro="issued" prefix="(" suffix=")"/>
        <text variable="title" font-style="italic"/>
        <number variable="volume"/>
      </group>
    </layout>
  </bibliography>
</style>
`

// DependentStyleXML is a dependent style: metadata only, pointing to its
// independent parent.
const DependentStyleXML = `<?xml version="1.0" encoding="utf-8"?>
<style xmlns="http://purl.org/net/xbiblio/csl" class="in-text" version="1.0" default-locale="de-DE">
  <info>
    <title>Dependent Journal</title>
    <id>http://www.zotero.org/styles/dependent-journal</id>
    <link href="http://www.zotero.org/styles/apa" rel="independent-parent"/>
    <updated>2021-06-01T00:00:00+00:00</updated>
  </info>
</style>
`

// NonConformantStyleXML is well-formed but violates the grammar: an invalid
// class value, an unknown attribute and an unknown element. It has no
// bibliography.
const NonConformantStyleXML = `<?xml version="1.0" encoding="utf-8"?>
<style xmlns="http://purl.org/net/xbiblio/csl" class="footnote" version="1.0">
  <info>
    <title>Broken</title>
    <id>broken</id>
    <updated>2020-01-01T00:00:00+00:00</updated>
  </info>
  <citation>
    <layout>
      <text variable="title" colour="red"/>
      <blink/>
    </layout>
  </citation>
</style>
`

// TruncatedStyleXML is not well-formed: the document ends inside the info
// element.
const TruncatedStyleXML = `<?xml version="1.0" encoding="utf-8"?>
<style xmlns="http://purl.org/net/xbiblio/csl" class="in-text" version="1.0">
  <info>
    <title>Cut off`

// English, German and French term sets for LocaleXML.
const (
	EnglishTerms = `
    <term name="and">and</term>
    <term name="editor">
      <single>editor</single>
      <multiple>editors</multiple>
    </term>
    <term name="editor" form="verb">edited by</term>
    <term name="page" form="short">
      <single>p.</single>
      <multiple>pp.</multiple>
    </term>
    <term name="no date" form="short">n.d.</term>`

	GermanTerms = `
    <term name="and">und</term>
    <term name="editor">
      <single>Herausgeber</single>
      <multiple>Herausgeber</multiple>
    </term>`

	FrenchTerms = `
    <term name="and">et</term>`
)

// LocaleXML returns a grammar-conformant locale document for lang holding
// the given term elements.
func LocaleXML(lang, terms string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<locale xmlns="http://purl.org/net/xbiblio/csl" version="1.0" xml:lang="%s">
  <info>
    <translator>
      <name>Jane Doe</name>
    </translator>
    <rights license="http://creativecommons.org/licenses/by-sa/3.0/">CC BY-SA 3.0</rights>
    <updated>2020-01-01T00:00:00+00:00</updated>
  </info>
  <style-options punctuation-in-quote="true"/>
  <date form="numeric" delimiter="/">
    <date-part name="month" form="numeric-leading-zeros"/>
    <date-part name="day" form="numeric-leading-zeros"/>
    <date-part name="year"/>
  </date>
  <terms>%s
  </terms>
</locale>
`, lang, terms)
}

// DataRoot is an on-disk CSL data layout created by WriteDataRoot.
type DataRoot struct {
	Root       string
	StylesDir  string
	LocalesDir string
}

// WriteDataRoot creates <tmp>/csl/{styles,locales} populated with fixture
// styles (apa, dependent-journal, broken, truncated) and locales (en-US,
// de-DE, fr-FR), plus files that do not follow the naming conventions.
func WriteDataRoot(t testing.TB) DataRoot {
	t.Helper()

	root := t.TempDir()
	dr := DataRoot{
		Root:       root,
		StylesDir:  filepath.Join(root, "csl", "styles"),
		LocalesDir: filepath.Join(root, "csl", "locales"),
	}
	for _, dir := range []string{dr.StylesDir, dr.LocalesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	files := map[string]string{
		filepath.Join(dr.StylesDir, "apa.csl"):                 StyleXML,
		filepath.Join(dr.StylesDir, "dependent-journal.csl"):   DependentStyleXML,
		filepath.Join(dr.StylesDir, "broken.csl"):              NonConformantStyleXML,
		filepath.Join(dr.StylesDir, "truncated.csl"):           TruncatedStyleXML,
		filepath.Join(dr.StylesDir, "notes.txt"):               "not a style",
		filepath.Join(dr.LocalesDir, "locales-en-US.xml"):      LocaleXML("en-US", EnglishTerms),
		filepath.Join(dr.LocalesDir, "locales-de-DE.xml"):      LocaleXML("de-DE", GermanTerms),
		filepath.Join(dr.LocalesDir, "locales-fr-FR.xml"):      LocaleXML("fr-FR", FrenchTerms),
		filepath.Join(dr.LocalesDir, "locales.json"):           "{}",
		filepath.Join(dr.LocalesDir, "README.md"):              "# locales",
		filepath.Join(dr.LocalesDir, "locales-en-US.xml.orig"): "backup",
	}
	for path, content := range files {
		WriteFile(t, path, content)
	}
	return dr
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
