package service

import (
	"fmt"
	"time"
)

const emailTimeFormat = "Jan 2, 2006 15:04 MST"

func shareInvitationTemplate(fileName, downloadURL string, expiresAt time.Time, codeRequired bool, appName string) (string, string) {
	subject := fmt.Sprintf("A file was shared with you on %s", appName)

	codeNote := ""
	if codeRequired {
		codeNote = "\nThe sender will give you an access code separately. You need it to download the file.\n"
	}

	body := fmt.Sprintf(`Hi,

%q was shared with you. Sign in and download it here:
%s
%s
The link stops working on %s.

If you weren't expecting this file, you can safely ignore this email.

Best,
The %s Team`, fileName, downloadURL, codeNote, expiresAt.UTC().Format(emailTimeFormat), appName)

	return subject, body
}

func firstAccessTemplate(fileName, accessedBy string, accessedAt time.Time, appName string) (string, string) {
	subject := fmt.Sprintf("Your shared file was downloaded on %s", appName)
	body := fmt.Sprintf(`Hi,

%q was downloaded for the first time by %s on %s.

You won't get another notice for this file. You can delete the share anytime to stop further downloads.

Best,
The %s Team`, fileName, accessedBy, accessedAt.UTC().Format(emailTimeFormat), appName)

	return subject, body
}
