package report

import (
	"fmt"
	"html/template"
	"strings"
)

// reportTemplate is the HTML body of the daily report email. It is a plain
// HTML rendition of the product-card layout users already receive; item
// types are guaranteed non-empty by the freshness classifier upstream.
const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Broccoli Daily Pantry Report</title>
</head>
<body style="background-color:#f9f9f9;font-family:Roboto,Arial,sans-serif;color:#333333;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;">
  <div style="padding:20px;text-align:center;">
    <img src="https://getbroccoli.app/logo.png" alt="Broccoli" width="200">
    <h1 style="color:#666666;font-weight:300;">Daily Pantry Report</h1>
  </div>
{{if .EatFirst}}
  <div style="padding:20px;">
    <h2 style="text-align:center;color:#666;">Heading to the kitchen?</h2>
    <p style="text-align:center;font-size:20px;">Eat these things first</p>
    {{range .EatFirst}}
    <div style="background-color:#f5f5f5;border-radius:8px;padding:15px;margin:10px 0;">
      <p style="font-weight:700;font-size:18px;margin:0 0 10px;">{{.Name}}</p>
      <p style="margin:0 0 5px;"><strong>How much is left?</strong><br>
        <span style="color:#27ae60;font-weight:bold;">{{printf "%.0f" .PercentRemaining}}%</span></p>
      <p style="margin:0;"><strong>Storage Advice:</strong><br>
        {{(index .ItemTypes 0).StorageAdvice}}</p>
    </div>
    {{end}}
  </div>
{{end}}
{{if .Remove}}
  <div style="padding:20px;">
    <h2 style="text-align:center;color:#666;">Might be that time...</h2>
    <p style="text-align:center;font-size:20px;">See if you can save these items</p>
    {{range .Remove}}
    <div style="background-color:#f5f5f5;border-radius:8px;padding:15px;margin:10px 0;">
      <p style="font-weight:700;font-size:18px;margin:0 0 10px;">{{.Name}}</p>
      <p style="margin:0 0 5px;"><strong>How much is left?</strong><br>
        <span style="color:#e74c3c;font-weight:bold;">{{printf "%.0f" .PercentRemaining}}%</span></p>
      <p style="margin:0;"><strong>Storage Advice:</strong><br>
        {{(index .ItemTypes 0).StorageAdvice}}</p>
    </div>
    {{end}}
  </div>
{{end}}
  <div style="padding:20px;text-align:center;">
    <a href="https://getbroccoli.app/items" style="background-color:#5c9841;color:#ffffff;padding:12px 24px;border-radius:4px;text-decoration:none;">View your inventory</a>
  </div>
{{if .Recipe}}
  <div style="background-color:#8BC34A;color:#ffffff;padding:20px;text-align:center;">
    <h2>This Week's Recipe Idea</h2>
    <p>Use your {{joinIngredients .Recipe.UsedIngredients}} to create a delicious {{.Recipe.Title}}!</p>
    {{if .Recipe.SourceURL}}
    <a href="{{.Recipe.SourceURL}}" style="background-color:#ffffff;color:#8BC34A;padding:10px 20px;border-radius:4px;text-decoration:none;font-weight:500;">VIEW RECIPE</a>
    {{end}}
  </div>
{{end}}
  <div style="padding:30px 20px;text-align:center;">
    <h2>Your Pantry Stats</h2>
    <div style="display:inline-block;width:45%;">
      <p style="font-size:36px;font-weight:700;color:#8BC34A;margin:0;">{{.UsageRate}}%</p>
      <p style="margin:5px 0 0;">Usage Rate</p>
    </div>
    <div style="display:inline-block;width:45%;">
      <p style="font-size:36px;font-weight:700;color:#8BC34A;margin:0;">${{printf "%.2f" .Savings}}</p>
      <p style="margin:5px 0 0;">Total Savings</p>
    </div>
  </div>
  <div style="background-color:#f5f5f5;padding:20px;text-align:center;color:#666666;font-size:12px;">
    &copy; 2025 Broccoli. All rights reserved.<br>
    You're receiving this email because you signed up for pantry tracking.
  </div>
</div>
</body>
</html>
`

var tmpl = template.Must(template.New("daily_report").
	Funcs(template.FuncMap{"joinIngredients": joinIngredients}).
	Parse(reportTemplate))

// Render produces the HTML body of the report email.
func Render(d Data) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return sb.String(), nil
}

// joinIngredients renders an ingredient list as natural prose:
// "a", "a and b", "a, b and c".
func joinIngredients(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
