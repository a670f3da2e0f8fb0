package report

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Android Lint Import Summary</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #f5f5f5;
            color: #333;
            line-height: 1.6;
        }

        #app {
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }

        header {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            margin-bottom: 20px;
        }

        header h1 {
            font-size: 24px;
            color: #2c3e50;
        }

        header p {
            font-size: 14px;
            color: #7f8c8d;
        }

        .dashboard {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 15px;
            margin-bottom: 20px;
        }

        .metric-card {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            text-align: center;
        }

        .metric-value {
            font-size: 32px;
            font-weight: bold;
            color: #2c3e50;
            margin-bottom: 5px;
        }

        .metric-label {
            font-size: 14px;
            color: #7f8c8d;
        }

        section {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            margin-bottom: 20px;
        }

        section h2 {
            font-size: 18px;
            color: #2c3e50;
            margin-bottom: 15px;
        }

        .severity-bar {
            display: flex;
            height: 24px;
            border-radius: 4px;
            overflow: hidden;
            margin-bottom: 10px;
        }

        .legend span {
            display: inline-block;
            margin-right: 15px;
            font-size: 13px;
        }

        .swatch {
            display: inline-block;
            width: 10px;
            height: 10px;
            border-radius: 2px;
            margin-right: 4px;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            font-size: 14px;
        }

        th, td {
            text-align: left;
            padding: 8px;
            border-bottom: 1px solid #eee;
        }

        th {
            color: #7f8c8d;
            font-weight: 600;
        }

        .badge {
            display: inline-block;
            padding: 2px 8px;
            border-radius: 12px;
            color: white;
            font-size: 12px;
            font-weight: 600;
        }

        code {
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            font-size: 13px;
        }

        .empty {
            color: #7f8c8d;
            font-style: italic;
        }
    </style>
</head>
<body>
<div id="app">
    <header>
        <h1>Android Lint Import Summary</h1>
        <p>Project <code>{{.ProjectDir}}</code> &middot; report <code>{{.ReportPath}}</code></p>
        <p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}{{if .RunID}} &middot; run <code>{{.RunID}}</code>{{end}}{{if .OutputPath}} &middot; issues written to <code>{{.OutputPath}}</code>{{end}}</p>
    </header>

    <div class="dashboard">
        <div class="metric-card">
            <div class="metric-value">{{.Emitted}}</div>
            <div class="metric-label">Findings</div>
        </div>
        <div class="metric-card">
            <div class="metric-value">{{len .Rules}}</div>
            <div class="metric-label">Rules</div>
        </div>
        <div class="metric-card">
            <div class="metric-value">{{.Skipped}}</div>
            <div class="metric-label">Skipped locations</div>
        </div>
        <div class="metric-card">
            <div class="metric-value">{{.Rejected}}</div>
            <div class="metric-label">Rejected findings</div>
        </div>
    </div>

    <section id="severities">
        <h2>Findings by severity</h2>
        {{$total := .Emitted}}
        {{if $total}}
        <div class="severity-bar">
            {{range .SeverityCounts}}{{if .Count}}<div style="width: {{percent .Count $total}}%; background: {{severityColor .Severity}}" title="{{.Severity}}: {{.Count}}"></div>{{end}}{{end}}
        </div>
        {{end}}
        <div class="legend">
            {{range .SeverityCounts}}<span><span class="swatch" style="background: {{severityColor .Severity}}"></span>{{.Severity}} {{.Count}}</span>{{end}}
        </div>
    </section>

    <section id="rules">
        <h2>Findings by rule</h2>
        {{if .Rules}}
        <table>
            <thead>
                <tr><th>Rule</th><th>Name</th><th>Type</th><th>Severity</th><th>Findings</th></tr>
            </thead>
            <tbody>
            {{range .Rules}}
                <tr>
                    <td><code>{{.Key}}</code></td>
                    <td>{{truncate .Name 60}}</td>
                    <td>{{typeIcon .Type}} {{.Type}}</td>
                    <td><span class="badge" style="background: {{severityColor .Severity}}">{{.Severity}}</span></td>
                    <td>{{.Count}}</td>
                </tr>
            {{end}}
            </tbody>
        </table>
        {{else}}
        <p class="empty">No findings.</p>
        {{end}}
    </section>

    <section id="skipped">
        <h2>Files not found in the project</h2>
        {{if .SkippedFiles}}
        <table>
            <tbody>
            {{range .SkippedFiles}}<tr><td><code>{{.}}</code></td></tr>{{end}}
            </tbody>
        </table>
        {{else}}
        <p class="empty">Every reported file was found.</p>
        {{end}}
    </section>

    {{if .Rejections}}
    <section id="rejections">
        <h2>Rejected findings</h2>
        <table>
            <thead>
                <tr><th>Rule</th><th>Location</th><th>Reason</th></tr>
            </thead>
            <tbody>
            {{range .Rejections}}
                <tr><td><code>{{.RuleKey}}</code></td><td><code>{{.File}}:{{.Line}}</code></td><td>{{.Reason}}</td></tr>
            {{end}}
            </tbody>
        </table>
    </section>
    {{end}}
</div>
</body>
</html>
`
