// Package templates renders the files moodle-plugin-ci writes into a Moodle tree.
package templates

import (
	"bytes"
	"strings"
	"text/template"
)

// MoodleConfigData contains the values substituted into Moodle's config.php.
type MoodleConfigData struct {
	DBType   string
	DBHost   string
	DBPort   string
	DBName   string
	DBUser   string
	DBPass   string
	WWWRoot  string
	DataRoot string
}

// moodleConfigTemplateStr is the config.php used for CI installs.
const moodleConfigTemplateStr = `<?php  // Moodle configuration file

unset($CFG);
global $CFG;
$CFG = new stdClass();

$CFG->dbtype    = '{{php .DBType}}';
$CFG->dblibrary = 'native';
$CFG->dbhost    = '{{php .DBHost}}';
$CFG->dbname    = '{{php .DBName}}';
$CFG->dbuser    = '{{php .DBUser}}';
$CFG->dbpass    = '{{php .DBPass}}';
$CFG->prefix    = 'mdl_';
$CFG->dboptions = ['dbport' => '{{php .DBPort}}'];

$CFG->wwwroot   = '{{php .WWWRoot}}';
$CFG->dataroot  = '{{php .DataRoot}}';
$CFG->admin     = 'admin';

$CFG->directorypermissions = 02777;

// Show debugging messages.
$CFG->debug = (E_ALL | E_STRICT);
$CFG->debugdisplay = 1;

// No emails.
$CFG->noemailever = true;
$CFG->noreplyaddress = 'noreply@localhost.local';

// App settings.
$CFG->phpunit_prefix = 'phpu_';
$CFG->phpunit_dataroot = '{{php .DataRoot}}/phpu_moodledata';

$CFG->behat_prefix = 'behat_';
$CFG->behat_dataroot = '{{php .DataRoot}}/behat_moodledata';
$CFG->behat_wwwroot = 'http://localhost:8000';
$CFG->behat_profiles = [
    'default' => [
        'browser' => 'firefox',
        'wd_host' => 'http://localhost:4444/wd/hub',
    ],
    'chrome' => [
        'browser' => 'chrome',
        'wd_host' => 'http://localhost:4444/wd/hub',
    ],
];

require_once(__DIR__.'/lib/setup.php');
`

// coverageFilterTemplateStr is the PHPUnit whitelist spliced into a plugin's phpunit.xml.
const coverageFilterTemplateStr = `    <filter>
        <whitelist addUncoveredFilesFromWhitelist="true">
            {{range $i, $f := .}}{{if $i}}
            {{end}}<file>{{html $f}}</file>{{end}}
        </whitelist>
    </filter>
`

var moodleConfigTemplate = template.Must(template.New("config.php").
	Funcs(template.FuncMap{"php": phpString}).
	Parse(moodleConfigTemplateStr))

var coverageFilterTemplate = template.Must(template.New("filter").Parse(coverageFilterTemplateStr))

// GenerateMoodleConfig renders config.php.
func GenerateMoodleConfig(data MoodleConfigData) (string, error) {
	var buf bytes.Buffer
	if err := moodleConfigTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateCoverageFilter renders the <filter> block whitelisting files.
// The block ends with a newline so it can be inserted before </phpunit>.
func GenerateCoverageFilter(files []string) (string, error) {
	var buf bytes.Buffer
	if err := coverageFilterTemplate.Execute(&buf, files); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// phpString escapes s for a single quoted PHP string literal.
func phpString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
