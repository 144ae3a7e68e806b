package email

import "fmt"

// BuildStockAlertBody builds the HTML body for a low-availability alert.
func BuildStockAlertBody(deviceID, deviceName string, count int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333;">
	<h2 style="color: #c0392b;">Device pool running low</h2>
	<p>The available count for a device model dropped to <strong>%d</strong>.</p>
	<table style="border-collapse: collapse;">
		<tr>
			<td style="padding: 8px; border-bottom: 1px solid #eee;">Device</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>%s</strong></td>
		</tr>
		<tr>
			<td style="padding: 8px; border-bottom: 1px solid #eee;">Model id</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee;"><code>%s</code></td>
		</tr>
	</table>
	<p>Consider restocking or pausing new reservations for this model.</p>
</body>
</html>`, count, deviceName, deviceID)
}
