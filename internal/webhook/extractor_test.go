package webhook

import (
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        Payload
		wantErr     bool
	}{
		{
			name:        "json payload",
			contentType: "application/json",
			body:        `{"type":"subscribe","contact":{"id":"7","email":"ana@example.com","phone":"+5511988887777"},"list":{"id":"3","name":"Alunos Mestre Ye"}}`,
			want: Payload{
				Type:    "subscribe",
				Contact: Contact{ID: "7", Email: "ana@example.com", Phone: "+5511988887777"},
				List:    List{ID: "3", Name: "Alunos Mestre Ye"},
			},
		},
		{
			name:        "form payload with bracketed keys",
			contentType: "application/x-www-form-urlencoded",
			body:        "type=subscribe&contact%5Bid%5D=7&contact%5Bemail%5D=ana%40example.com&contact%5Bphone%5D=11988887777&list%5Bid%5D=3&list%5Bname%5D=Alunos+BNY2",
			want: Payload{
				Type:    "subscribe",
				Contact: Contact{ID: "7", Email: "ana@example.com", Phone: "11988887777"},
				List:    List{ID: "3", Name: "Alunos BNY2"},
			},
		},
		{
			name:        "form type fallback to contact[type]",
			contentType: "application/x-www-form-urlencoded",
			body:        "contact%5Btype%5D=subscribe&contact%5Bemail%5D=x%40y.com&list=9",
			want: Payload{
				Type:    "subscribe",
				Contact: Contact{Email: "x@y.com"},
				List:    List{ID: "9"},
			},
		},
		{
			name:        "unknown content type tries json first",
			contentType: "text/plain",
			body:        `{"contact":{"email":"a@b.com"}}`,
			want:        Payload{Contact: Contact{Email: "a@b.com"}},
		},
		{
			name:        "unknown content type falls back to form",
			contentType: "",
			body:        "contact%5Bemail%5D=a%40b.com",
			want:        Payload{Contact: Contact{Email: "a@b.com"}},
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        "{not json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.contentType, []byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHasContact(t *testing.T) {
	if (Payload{}).HasContact() {
		t.Error("empty payload should have no contact")
	}
	if !(Payload{Contact: Contact{Email: "a@b.com"}}).HasContact() {
		t.Error("payload with email should have contact")
	}
	if !(Payload{Contact: Contact{Phone: "11999998888"}}).HasContact() {
		t.Error("payload with phone should have contact")
	}
}

func TestFlagsForList(t *testing.T) {
	tests := []struct {
		name     string
		listName string
		wantGen  bool
		wantBny  bool
	}{
		{"general student list", "Alunos Mestre Ye", true, false},
		{"english student list", "Students 2026", true, false},
		{"legacy cohort list", "Lista BNY2", false, true},
		{"legacy cohort with aluno", "Alunos BNY2", true, true},
		{"unrecognized list defaults to general", "Compradores VIP", true, false},
		{"empty list name defaults to general", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := flagsForList(tt.listName)
			if got := update.IsAluno != nil; got != tt.wantGen {
				t.Errorf("IsAluno set = %v, want %v", got, tt.wantGen)
			}
			if got := update.IsAlunoBny2 != nil; got != tt.wantBny {
				t.Errorf("IsAlunoBny2 set = %v, want %v", got, tt.wantBny)
			}
		})
	}
}
