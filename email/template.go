package email

import "html/template"

const confirmationEmailSubject = "Please Confirm News Authorship"

// Body of the authorship confirmation message. NewsTitle is user-supplied and
// escaped by html/template; the two links carry the same confirmation id, the
// second with the deny marker.
const confirmationEmailTemplate = `
<div style="font-family: Arial, sans-serif; padding: 30px;">
  <h2>News Authorship Confirmation</h2>

  <p>Hello,</p>

  <p>
    Someone submitted a news item titled
    <strong>{{.NewsTitle}}</strong> and listed your email as the potential author.
  </p>

  <p>Please confirm whether you are the author of this article:</p>

  <p>
    <a href="{{.ConfirmLink}}">Yes, I am the author</a><br/>
    <a href="{{.DenyLink}}">No, I am not the author</a>
  </p>

  <p>
    If you believe this request was sent to you in error, you can safely
    ignore this message.
  </p>
</div>
`

var confirmationTemplate = template.Must(
	template.New("confirmation").Parse(confirmationEmailTemplate))

const signInEmailSubject = "Your sign-in link for News Portal"

const signInEmailTemplate = `
<div style="font-family: Arial, sans-serif; padding: 30px;">
  <h2>Sign in to News Portal</h2>

  <p>
    You have been invited to News Portal, or you asked us for a sign-in link.
    Click below to sign in:
  </p>

  <p><a href="%s">Sign in</a></p>

  <p>The link expires shortly. If you didn't request it, ignore this message.</p>
</div>
`
