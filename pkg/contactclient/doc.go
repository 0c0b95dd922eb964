// Package contactclient submits the portfolio contact form to the dispatch
// endpoint.
//
// A Form mirrors the browser form: it holds the four inputs, allows one
// submission in flight at a time and remembers only the latest result.
//
//	c, err := contactclient.New(contactclient.WithServer("http://localhost:8080"))
//	if err != nil {
//		return err
//	}
//	form := contactclient.NewForm(c)
//	form.Name, form.Email, form.Subject, form.Message = "Ada", "ada@x.com", "Hi", "Hello"
//	res, err := form.Submit(ctx)
package contactclient
