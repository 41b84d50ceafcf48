// internal/app/features/signing/messages.go
package signing

import (
	"fmt"
	"time"
)

// Recipient-facing WhatsApp copy, Hebrew like the rest of the product.

func msgSigningInvite(recipientName, fileName string, expiresAt time.Time, url string) string {
	return fmt.Sprintf("שלום %s,\nהמסמך \"%s\" ממתין לחתימתך עד %s.\nלצפייה וחתימה:\n%s",
		recipientName, fileName, expiresAt.Format("02.01.2006"), url)
}

func msgSigningDone(fileName string) string {
	return fmt.Sprintf("המסמך \"%s\" נחתם בהצלחה. עותק חתום נשמר במשרד.", fileName)
}
