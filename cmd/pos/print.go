package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"warimas-pos/internal/cart"
	"warimas-pos/internal/category"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/product"
	"warimas-pos/internal/transaction"
	"warimas-pos/internal/user"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return "Rp " + d.StringFixed(0)
}

func table(write func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	write(w)
	_ = w.Flush()
}

func printProducts(items []product.Product) {
	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tCATEGORY")
		for _, p := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Name, money(p.Price), p.Stock, p.CategoryName)
		}
	})
}

func printCategories(items []category.Category) {
	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME")
		for _, c := range items {
			fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
		}
	})
}

func printMethods(items []payment.Method) {
	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tCODE\tACTIVE")
		for _, m := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", m.ID, m.Name, m.Code, m.Active)
		}
	})
}

func printUsers(items []user.User) {
	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE")
		for _, u := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role)
		}
	})
}

func printBasket(lines []cart.Line, totals cart.Totals) {
	if len(lines) == 0 {
		fmt.Println("basket is empty")
		return
	}

	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tITEM\tUNIT\tQTY\tSUBTOTAL")
		for _, l := range lines {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", l.ProductID, l.Name, money(l.UnitPrice), l.Quantity, money(l.Subtotal()))
		}
		fmt.Fprintf(w, "\t\t\tsubtotal\t%s\n", money(totals.Subtotal))
		fmt.Fprintf(w, "\t\t\tservice\t%s\n", money(totals.ServiceCharge))
		fmt.Fprintf(w, "\t\t\ttotal\t%s\n", money(totals.Total))
	})
}

func printReceipt(tx *transaction.Transaction) {
	fmt.Printf("settled %s\n", tx.InvoiceNumber)
	table(func(w *tabwriter.Writer) {
		for _, item := range tx.Items {
			fmt.Fprintf(w, "%s\tx%d\t%s\n", item.Name, item.Quantity, money(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))))
		}
		fmt.Fprintf(w, "service charge\t\t%s\n", money(tx.ServiceCharge))
		fmt.Fprintf(w, "total\t\t%s\n", money(tx.Total))
	})
	if tx.CashierName != "" {
		fmt.Printf("served by %s\n", tx.CashierName)
	}
}

func printInstructions(methodCode string, total decimal.Decimal) {
	steps := payment.InjectVariables(payment.Instructions(methodCode),
		payment.InstructionVars{"amount": money(total)})

	fmt.Println("settlement:")
	for i, step := range steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

func printSummary(rows []transaction.DailySummary) {
	if len(rows) == 0 {
		fmt.Println("no sales in this window")
		return
	}

	table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "DATE\tSALES\tGROSS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.Date, r.Count, money(r.Gross))
		}
	})
}
