// internal/app/features/whatsapp/messages.go
package whatsapp

import (
	"fmt"
	"strings"

	"github.com/caseflowhq/caseflow/internal/domain/models"
)

// User-facing chat copy. The office staff side of the product is Hebrew, so
// the bot answers in Hebrew.
const (
	msgUnauthorized = "מספר זה אינו מורשה לשליחת מסמכים למערכת. לקבלת גישה יש לפנות למנהל המשרד."

	msgSendDocumentHint = "שלחו מסמך (PDF או תמונה) והוא ייקלט אוטומטית במערכת המשרד."

	msgUnsupportedType = "סוג הקובץ אינו נתמך. ניתן לשלוח PDF או תמונה (JPG, PNG, GIF, WEBP, BMP)."

	msgNoOrganization = "המשתמש שלך אינו משויך לאף משרד במערכת. יש לפנות למנהל המשרד."

	msgProcessingError = "אירעה שגיאה בקליטת המסמך. נסו שוב מאוחר יותר."

	msgReceivedWithErrors = "המסמך נשמר, אך עיבוד התוכן נכשל. צוות המשרד יטפל בו ידנית."
)

// msgSelectionMenu asks a multi-office sender where to file the document.
func msgSelectionMenu(choices []models.OrgChoice) string {
	var b strings.Builder
	b.WriteString("לאיזה משרד לשייך את המסמך? השיבו במספר בלבד:\n")
	writeMenuLines(&b, choices)
	return b.String()
}

// msgInvalidSelection re-prompts after an out-of-range or non-numeric reply.
func msgInvalidSelection(choices []models.OrgChoice) string {
	var b strings.Builder
	b.WriteString("בחירה לא תקינה. השיבו במספר מתוך הרשימה:\n")
	writeMenuLines(&b, choices)
	return b.String()
}

func writeMenuLines(b *strings.Builder, choices []models.OrgChoice) {
	for i, c := range choices {
		fmt.Fprintf(b, "%d. %s\n", i+1, c.Name)
	}
}

// msgReceived confirms a successful intake, naming what the extraction
// recognized when it recognized anything.
func msgReceived(f models.ExtractedFields) string {
	var b strings.Builder
	b.WriteString("המסמך נקלט בהצלחה וממתין לאימות במערכת.")
	if f.Title != "" {
		fmt.Fprintf(&b, "\nכותרת: %s", f.Title)
	}
	if f.DocumentType != "" {
		fmt.Fprintf(&b, "\nסוג מסמך: %s", f.DocumentType)
	}
	if f.CaseNumber != "" {
		fmt.Fprintf(&b, "\nמספר תיק: %s", f.CaseNumber)
	}
	return b.String()
}
