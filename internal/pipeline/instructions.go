package pipeline

import (
	"bytes"
	"fmt"
	"text/template"

	"legacyshift/internal/types"
)

// Instructions is the rendered, immutable instruction payload of each stage
// for one family.
type Instructions struct {
	Grouping  string
	Context   string
	Transform string
	TestGen   string
	Scaffold  string
	Merge     string
}

const outputRules = `
## Output rules
- Respond with ONE JSON object matching the schema above and nothing else.
- No markdown fences, no commentary.
- Use forward slashes in every path.`

var stageTemplates = map[types.Stage]string{
	types.StageGrouping: `You are a senior software architect analysing a {{.Legacy}} code base before migrating it to {{.Target}}.

Task: split the input files into the smallest cohesive feature slices that can be migrated independently.
A slice is typically {{.Units}}.

Input: {"files": [{"path": "...", "content": "..."}]}

Rules:
- Only source files take part in the analysis; ignore README files, VCS metadata and editor settings.
{{- range .Grouping}}
- {{.}}
{{- end}}
- A file may appear in more than one group when several slices depend on it.
- Copy paths exactly as given; never invent a path.

Schema:
{"groups": [{"id": 1, "description": "one sentence in English", "member_paths": ["path", "..."]}]}
` + outputRules,

	types.StageContext: `You are a systems analyst reverse engineering one feature slice of a {{.Legacy}} application that will be rebuilt with {{.Target}}.

Input: {"group_id": 1, "description": "...", "files": [{"path": "...", "content": "..."}]}

Extract a dossier that guides the conversion agent:
- functionalities: what the slice does, one short sentence each.
- endpoints: externally reachable operations.
- data_models, dependencies, integrations: names only.
- library_migrations: every legacy library in use paired with its modern replacement.
{{- range .Context}}
- {{.}}
{{- end}}

Schema:
{"context": {"functionalities": [""], "endpoints": [{"url": "", "method": "", "parameters": [""], "return": ""}], "data_models": [""], "dependencies": [""], "integrations": [""], "library_migrations": [{"old": "", "new": ""}]}}
` + outputRules,

	types.StageTransform: `You are an expert engineer migrating {{.Legacy}} code to {{.Target}}.

Input: {"files": [{"path": "...", "content": "..."}], "context": {...dossier...}}

Rules:
- Convert only the given files. Do not generate build files or project boilerplate.
- Use the modern libraries listed in context.library_migrations.
{{- range .Transform}}
- {{.}}
{{- end}}
- When logic is complex, keep a short explanatory comment in the generated code.

Schema:
{"files": [{"path": "new/relative/path", "content": "full file content"}]}
` + outputRules,

	types.StageTestGen: `You are an SDET writing automated tests for code freshly migrated to {{.Target}}.

Input: {"files": [{"path": "...", "content": "..."}], "context": {...dossier of the original code...}}

Rules:
- Cover every functionality and endpoint listed in the context.
{{- range .Tests}}
- {{.}}
{{- end}}
- Return only new test files; never return the input files.

Schema:
{"test_files": [{"path": "...", "content": "..."}]}
` + outputRules,

	types.StageScaffold: `You are setting up a runnable {{.Target}} project that will host code already converted from {{.Legacy}}.

Input: {"library_migrations": [{"old": "", "new": ""}], "all_output_paths": ["..."]}

Rules:
- Generate only the project boilerplate; the converted sources already exist at all_output_paths.
{{- range .Scaffold}}
- {{.}}
{{- end}}
- Declare every dependency implied by library_migrations.
- Infer package names and directories from all_output_paths.

Schema:
{"files": [{"path": "...", "content": "..."}]}
` + outputRules,

	types.StageMerge: `You are a senior engineer merging independently generated versions of the same {{.MergeLanguages}} file from a {{.Legacy}} to {{.Target}} migration.

Input: {"duplicates": [{"path": "same/path", "content": "..."}]}

Rules:
- Identical versions: return one of them.
- Non-conflicting additions: return the union of imports, fields, injections and methods.
- Conflicting edits of the same member: synthesise one version that keeps both intents.
- When no clean merge exists keep the most complete version and add the comment
  "TODO: [AI-MERGE-CONFLICT] review manually" at the conflict.
- The result must be syntactically valid and must keep the input path unchanged.

Schema:
{"merged_file": {"path": "same/path", "content": "merged content"}}
` + outputRules,
}

// renderInstructions renders every stage template for p.
func renderInstructions(p profile) (Instructions, error) {
	render := func(stage types.Stage) (string, error) {
		tpl, err := template.New(string(stage)).Parse(stageTemplates[stage])
		if err != nil {
			return "", fmt.Errorf("parse %s template: %w", stage, err)
		}
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, p); err != nil {
			return "", fmt.Errorf("render %s instructions for %s: %w", stage, p.Family, err)
		}
		return buf.String(), nil
	}
	var (
		out Instructions
		err error
	)
	for _, slot := range []struct {
		stage types.Stage
		dst   *string
	}{
		{types.StageGrouping, &out.Grouping},
		{types.StageContext, &out.Context},
		{types.StageTransform, &out.Transform},
		{types.StageTestGen, &out.TestGen},
		{types.StageScaffold, &out.Scaffold},
		{types.StageMerge, &out.Merge},
	} {
		if *slot.dst, err = render(slot.stage); err != nil {
			return Instructions{}, err
		}
	}
	return out, nil
}
