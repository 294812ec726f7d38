package student

import "testing"

func validInput() RegistrationInput {
	return RegistrationInput{
		PreferredLanguage:    "en",
		AdhaarNumber:         "1234 5678 9012",
		FirstName:            "Asha",
		LastName:             "Kumar",
		Password:             "secret1",
		DateOfBirth:          "2010-06-15",
		Gender:               "female",
		SchoolNameAndAddress: "Zenith School, Pune",
		Class:                "8",
		Board:                "CBSE",
		AddressLine1:         "12 MG Road",
		City:                 "Pune",
		State:                "Maharashtra",
		Country:              "India",
		Pincode:              "411001",
		Email:                "asha@example.com",
		Mobile:               "9876543210",
	}
}

func TestValidateOK(t *testing.T) {
	if errs := Validate(validInput()); errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}

func TestValidateOptionalFields(t *testing.T) {
	in := validInput()
	in.AdhaarNumber = ""
	in.MiddleName = ""
	in.SchoolEnrollmentNumber = ""
	in.AddressLine2 = ""
	if errs := Validate(in); errs != nil {
		t.Fatalf("optional fields rejected: %+v", errs)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*RegistrationInput)
		wantField string
	}{
		{"missing first name", func(in *RegistrationInput) { in.FirstName = "" }, "firstName"},
		{"bad email", func(in *RegistrationInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegistrationInput) { in.Password = "abc" }, "password"},
		{"bad dob", func(in *RegistrationInput) { in.DateOfBirth = "15-06-2010" }, "dateOfBirth"},
		{"short pincode", func(in *RegistrationInput) { in.Pincode = "4110" }, "pincode"},
		{"alpha pincode", func(in *RegistrationInput) { in.Pincode = "41100a" }, "pincode"},
		{"short mobile", func(in *RegistrationInput) { in.Mobile = "12345" }, "mobile"},
		{"bad aadhaar", func(in *RegistrationInput) { in.AdhaarNumber = "12345" }, "adhaarNumber"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			errs := Validate(in)
			if errs == nil {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, fe := range errs {
				if fe.Field == tc.wantField {
					found = true
					if fe.Message == "" {
						t.Fatal("empty message")
					}
				}
			}
			if !found {
				t.Fatalf("no error for field %q in %+v", tc.wantField, errs)
			}
		})
	}
}

func TestValidateCollectsAllFields(t *testing.T) {
	in := validInput()
	in.FirstName = ""
	in.Email = "nope"
	in.Mobile = "1"
	errs := Validate(in)
	if len(errs) < 3 {
		t.Fatalf("got %d errors, want one per failing field: %+v", len(errs), errs)
	}
}

func TestDisplayName(t *testing.T) {
	r := Record{FirstName: "Asha", MiddleName: "  ", LastName: "Kumar"}
	if got := r.DisplayName(); got != "Asha Kumar" {
		t.Fatalf("name = %q", got)
	}
	full := Record{FirstName: "A", MiddleName: "B", LastName: "C"}
	if got := full.DisplayName(); got != "A B C" {
		t.Fatalf("name = %q", got)
	}
	if got := (Record{}).DisplayName(); got != "" {
		t.Fatalf("name = %q", got)
	}
}
