package report

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>New Papers</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0 auto; max-width: 960px; padding: 1rem; color: #222; }
  header { border-bottom: 2px solid #ddd; margin-bottom: 1rem; padding-bottom: 0.5rem; }
  header .meta { color: #666; font-size: 0.85rem; }
  section.journal { margin-bottom: 1.5rem; }
  section.journal h2 { font-size: 1.1rem; border-left: 4px solid #4a7; padding-left: 0.5rem; }
  section.journal h2 a { color: inherit; text-decoration: none; }
  section.journal h2 .count { color: #888; font-weight: normal; font-size: 0.85rem; }
  article.paper { margin: 0.6rem 0 0.6rem 1rem; }
  article.paper .title { font-weight: 600; }
  article.paper .title a { color: #1756a9; text-decoration: none; }
  article.paper .byline { color: #555; font-size: 0.85rem; }
  article.paper .doi { color: #888; font-size: 0.8rem; }
  .empty { color: #999; font-size: 0.85rem; margin-left: 1rem; }
</style>
</head>
<body>
<header>
  <h1>New Papers</h1>
  <p class="meta">
    {{.TotalCount}} papers from {{.JournalsWithPapers}} of {{.TotalJournals}} journals,
    last {{.DaysBack}} days. Generated {{.GeneratedAt}}.
  </p>
</header>
{{range .Groups}}
<section class="journal">
  <h2>
    {{if .URL}}<a href="{{.URL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}
    <span class="count">({{len .Papers}})</span>
  </h2>
  {{if .Papers}}
    {{range .Papers}}
    <article class="paper" data-published="{{.PublishedISO}}" data-fetched="{{.FetchedISO}}">
      <div class="title">{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</div>
      <div class="byline">{{.Authors}}{{if .Published}} &middot; {{.Published}}{{end}}</div>
      {{if .DOI}}<div class="doi">{{.DOI}}</div>{{end}}
    </article>
    {{end}}
  {{else}}
  <p class="empty">No new papers.</p>
  {{end}}
</section>
{{end}}
</body>
</html>
`
