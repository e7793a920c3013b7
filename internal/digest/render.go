package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"azdigest/internal/bullets"
)

type renderInput struct {
	Posts        []*Post
	HasNew       bool
	NewCount     int
	ScheduleText string
	Statuses     []FeedStatus
	LookbackDays int
	WindowHours  int
	BulletCount  int
}

const styleBlock = `body { font-family: 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #222; max-width: 860px; margin: 0 auto; padding: 18px; background: #f4f6f8; }
.container { background: #fff; border-radius: 10px; box-shadow: 0 2px 6px rgba(0,0,0,0.08); overflow: hidden; }
.header { background: linear-gradient(135deg,#e3f2fd,#bbdefb); padding: 22px 26px; border-bottom: 3px solid #0078d4; }
.header h1 { margin: 0; color: #0078d4; font-size: 26px; }
.header .meta { margin-top: 6px; color: #005a9e; font-weight: 600; }
.content { padding: 18px 26px; }
.notice { background: #fff3cd; border-left: 4px solid #ffc107; padding: 12px 14px; border-radius: 6px; margin: 14px 0; color: #6b5500; }
.post { background: #f8f9fa; border-left: 4px solid #0078d4; padding: 16px; border-radius: 6px; margin: 14px 0; }
.post-title { font-size: 18px; font-weight: 700; margin: 0 0 6px 0; color: #0b3d91; }
.tag { display:inline-block; background:#0078d4; color:#fff; padding: 2px 10px; border-radius: 999px; font-size: 12px; margin-right: 8px; }
.date { color:#666; font-size: 13px; }
.bullets { margin: 10px 0 0 0; padding-left: 18px; }
.bullets li { margin: 4px 0; }
.link { display:inline-block; margin-top: 10px; background:#0078d4; color:#fff !important; padding: 8px 14px; text-decoration:none; border-radius:6px; }
.link:hover { background:#005a9e; }
.footer { padding: 14px 26px; border-top: 1px solid #e6e6e6; color:#666; font-size: 12px; }
table { width:100%; border-collapse: collapse; margin-top: 10px; }
th, td { border: 1px solid #e6e6e6; padding: 8px; font-size: 12px; text-align:left; }
th { background:#fafafa; }
.ok { color:#1b5e20; font-weight:700; }
.fail { color:#b71c1c; font-weight:700; }`

// renderHTML is a pure function of its input; all timestamps render in
// UTC so the same pipeline state always produces the same document.
func renderHTML(in renderInput) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta http-equiv=\"Content-Type\" content=\"text/html; charset=utf-8\">\n")
	sb.WriteString("<style>\n")
	sb.WriteString(styleBlock)
	sb.WriteString("\n</style>\n</head>\n<body>\n")
	sb.WriteString("<div class=\"container\">\n")

	sb.WriteString("<div class=\"header\">\n")
	sb.WriteString("<h1>☁️ Microsoft Azure 업데이트</h1>\n")
	if in.HasNew {
		fmt.Fprintf(&sb, "<div class=\"meta\">새 게시글 %d개 (최근 %d시간)</div>\n", in.NewCount, in.WindowHours)
	} else {
		fmt.Fprintf(&sb, "<div class=\"meta\">신규 없음 (최근 %d시간)</div>\n", in.WindowHours)
	}
	fmt.Fprintf(&sb, "<div style=\"margin-top:6px;color:#2b4a6b;font-size:12px;\">%s</div>\n", html.EscapeString(in.ScheduleText))
	sb.WriteString("</div>\n")

	sb.WriteString("<div class=\"content\">\n")
	writeWindowTable(&sb, in.Statuses, in.WindowHours)

	if !in.HasNew {
		fmt.Fprintf(&sb, "<div class=\"notice\">최근 %d시간 내 신규 게시글이 없어 최근 글을 요약해서 보냅니다. (라이브 RSS 기준)</div>\n", in.WindowHours)
	}
	if len(in.Posts) == 0 {
		sb.WriteString("<div class=\"post\"><div class=\"post-title\">게시글을 가져오지 못했습니다.</div><div>RSS 연결/권한/피드 상태를 확인해 주세요.</div></div>\n")
	}

	for _, p := range in.Posts {
		writePost(&sb, p, in.BulletCount)
	}

	writeStatusTable(&sb, in.Statuses, in.WindowHours, in.LookbackDays)

	sb.WriteString("</div>\n")
	sb.WriteString("<div class=\"footer\">Generated by Azure Security Blog Automation</div>\n")
	sb.WriteString("</div>\n</body>\n</html>\n")

	return sb.String()
}

// writeWindowTable puts a per-feed recency summary at the top, sorted by
// source name so feed order in the request does not reshuffle the table.
func writeWindowTable(sb *strings.Builder, statuses []FeedStatus, windowHours int) {
	sorted := make([]FeedStatus, len(statuses))
	copy(sorted, statuses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].SourceName) < strings.ToLower(sorted[j].SourceName)
	})

	sb.WriteString("<div style=\"margin-top:10px;\">\n")
	fmt.Fprintf(sb, "<div style=\"font-weight:700;color:#444;\">피드별 최근 %d시간 등록 현황</div>\n", windowHours)
	sb.WriteString("<table>\n")
	fmt.Fprintf(sb, "<tr><th>Source</th><th>최근 %d시간</th><th>상태</th></tr>\n", windowHours)
	for _, fs := range sorted {
		label := "없음"
		if fs.ItemsInWindow > 0 {
			label = fmt.Sprintf("%d개", fs.ItemsInWindow)
		}
		status, cls := "FAIL", "fail"
		if fs.Ok {
			status, cls = "OK", "ok"
		}
		fmt.Fprintf(sb, "<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td></tr>\n",
			html.EscapeString(fs.SourceName), html.EscapeString(label), cls, status)
	}
	sb.WriteString("</table>\n</div>\n")
}

func writePost(sb *strings.Builder, p *Post, bulletCount int) {
	emoji := p.Emoji
	if strings.TrimSpace(emoji) == "" {
		emoji = "📰"
	}
	src := p.SourceName
	if src == "" {
		src = "Unknown"
	}
	title := p.Title
	if title == "" {
		title = "(no title)"
	}

	sb.WriteString("<div class=\"post\">\n")
	fmt.Fprintf(sb, "<div class=\"post-title\"><span class=\"tag\">%s %s</span>%s</div>\n",
		emoji, html.EscapeString(src), html.EscapeString(title))

	if !p.Published.IsZero() {
		fmt.Fprintf(sb, "<div class=\"date\">📅 %s</div>\n", p.Published.UTC().Format("2006-01-02 15:04"))
	}

	if strings.TrimSpace(p.FirstParagraph) != "" {
		sb.WriteString("<div style=\"margin-top:12px;font-weight:700;color:#333;\">📝 블로그 첫 문단</div>\n")
		fmt.Fprintf(sb, "<div style=\"margin-top:6px;color:#444;font-style:italic;border-left:3px solid #0078d4;padding-left:12px;\">%s</div>\n",
			html.EscapeString(p.FirstParagraph))
	}

	// Korean bullets render only when the model actually produced Hangul;
	// otherwise the placeholder set explains what is missing.
	koRaw := p.KoreanBullets
	if !bullets.AnyHangul(koRaw) {
		koRaw = nil
	}
	ko := bullets.Normalize(koRaw, bulletCount, bullets.KoreanPlaceholders)

	sb.WriteString("<div style=\"margin-top:14px;font-weight:700;color:#333;\">💡 핵심 인사이트 (AI Summary)</div>\n")
	sb.WriteString("<ul class=\"bullets\">\n")
	for _, b := range ko {
		fmt.Fprintf(sb, "<li>%s</li>\n", html.EscapeString(b))
	}
	sb.WriteString("</ul>\n")

	if strings.TrimSpace(p.Link) != "" {
		fmt.Fprintf(sb, "<a class=\"link\" href=\"%s\">전체 글 읽기 →</a>\n", html.EscapeString(p.Link))
	}
	sb.WriteString("</div>\n")
}

// writeStatusTable is the detailed per-feed diagnostics table, in the
// request's feed order.
func writeStatusTable(sb *strings.Builder, statuses []FeedStatus, windowHours, lookbackDays int) {
	sb.WriteString("<div style=\"margin-top:18px;\">\n")
	sb.WriteString("<div style=\"font-weight:700; color:#444;\">피드 상세 상태</div>\n")
	sb.WriteString("<table>\n")
	fmt.Fprintf(sb, "<tr><th>Source</th><th>Status</th><th>최근 %d시간</th><th>최근 %d일</th><th>Elapsed</th><th>Error</th></tr>\n",
		windowHours, lookbackDays)
	for _, fs := range statuses {
		status, cls := "FAIL", "fail"
		if fs.Ok {
			status, cls = "OK", "ok"
		}
		fmt.Fprintf(sb, "<tr><td>%s</td><td class=\"%s\">%s</td><td>%d</td><td>%d</td><td>%d ms</td><td>%s</td></tr>\n",
			html.EscapeString(fs.SourceName), cls, status, fs.ItemsInWindow, fs.Items, fs.ElapsedMs, html.EscapeString(fs.Error))
	}
	sb.WriteString("</table>\n</div>\n")
}
