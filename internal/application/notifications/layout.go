package notifications

import (
	"fmt"
	"html"
	"time"
)

// emailLayout wraps a notification in the BidOps mail frame.
func emailLayout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>BidOps</title></head>
<body style="margin:0;padding:24px;background:#F3F4F6;font-family:Helvetica,Arial,sans-serif;color:#1F2937">
  <table width="100%%" cellpadding="0" cellspacing="0"><tr><td align="center">
    <table width="560" style="background:#FFFFFF;border-radius:8px;padding:32px">
      <tr><td>
        <h1 style="font-size:20px;margin:0 0 16px 0">%s</h1>
        <p style="font-size:15px;line-height:1.6;margin:0 0 24px 0">%s</p>
        <p style="font-size:12px;color:#6B7280">&copy; %d BidOps</p>
      </td></tr>
    </table>
  </td></tr></table>
</body>
</html>`, html.EscapeString(title), html.EscapeString(body), time.Now().Year())
}
