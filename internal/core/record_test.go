package core

import "testing"

func TestRecordValidate(t *testing.T) {
	good := Record{Type: Expense, Category: "餐饮", Amount: 1500, Date: "2024-05-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Type: "transfer", Category: "餐饮", Amount: 100},
		{Type: Expense, Category: "  ", Amount: 100},
		{Type: Expense, Category: "餐饮", Amount: 0},
		{Type: Income, Category: "工资", Amount: -1},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategorySetAddRemove(t *testing.T) {
	var cs CategorySet
	for _, name := range []string{"餐饮", "交通", "购物"} {
		if err := cs.Add(Expense, name); err != nil {
			t.Fatalf("add %q: %v", name, err)
		}
	}
	if err := cs.Add(Expense, "餐饮"); err == nil {
		t.Fatal("duplicate add should fail")
	}
	if err := cs.Add(Expense, "  "); err == nil {
		t.Fatal("blank add should fail")
	}
	if err := cs.Add("other", "x"); err == nil {
		t.Fatal("unknown type should fail")
	}

	// Insertion order drives display order.
	want := []string{"餐饮", "交通", "购物"}
	for i, name := range want {
		if cs.Expense[i] != name {
			t.Fatalf("order broken: got %v", cs.Expense)
		}
	}

	if !cs.Remove(Expense, "交通") {
		t.Fatal("remove existing should report true")
	}
	if cs.Remove(Expense, "交通") {
		t.Fatal("remove absent should report false")
	}
	if cs.Contains(Expense, "交通") {
		t.Fatal("removed name still present")
	}
	if !cs.Contains(Expense, "购物") {
		t.Fatal("unrelated name lost on remove")
	}
}

func TestBudgetMapNormalize(t *testing.T) {
	b := BudgetMap{"餐饮": 50000, "交通": 0, "购物": -100}
	n := b.Normalize()
	if len(n) != 1 || n["餐饮"] != 50000 {
		t.Fatalf("Normalize() = %v", n)
	}
	if n.Total() != 50000 {
		t.Fatalf("Total() = %v", n.Total())
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := Snapshot{
		Records:    []Record{{ID: "a", Type: Expense, Category: "餐饮", Amount: 100, Date: "2024-05-01"}},
		Categories: CategorySet{Expense: []string{"餐饮"}},
		Budgets:    BudgetMap{"餐饮": 1000},
	}
	c := s.Clone()
	c.Records[0].Amount = 999
	c.Categories.Expense[0] = "changed"
	c.Budgets["餐饮"] = 1

	if s.Records[0].Amount != 100 || s.Categories.Expense[0] != "餐饮" || s.Budgets["餐饮"] != 1000 {
		t.Fatal("Clone shares state with original")
	}
}
