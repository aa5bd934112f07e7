// Package spamcheck classifies email text with a pretrained vectorizer and
// classifier loaded from disk.
//
// Quick start:
//
//	sc, err := spamcheck.New(spamcheck.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sc.Close()
//
//	label, _ := sc.Predict("you have won free money")
//	fmt.Println(label) // 1
//
// The Checker is safe for concurrent use. Create once, reuse across
// requests.
package spamcheck
