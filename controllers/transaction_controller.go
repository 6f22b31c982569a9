// controllers/transaction_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
	"relief_resource_sync/engine"
	"relief_resource_sync/models"
)

type TransactionController struct{ *Srv }

func NewTransactionController(s *Srv) *TransactionController {
	return &TransactionController{Srv: s}
}

type borrowerReq struct {
	Name       string `json:"name" binding:"required"`
	Contact    string `json:"contact"`
	Department string `json:"department"`
}

func (b borrowerReq) toModel() models.Borrower {
	return models.Borrower{Name: b.Name, Contact: b.Contact, Department: b.Department}
}

// Borrow lends a quantity of the resource in the path to one borrower.
func (tc *TransactionController) Borrow(c *gin.Context) {
	var in struct {
		Quantity   int         `json:"quantity" binding:"required"`
		Borrower   borrowerReq `json:"borrower" binding:"required"`
		PictureRef string      `json:"pictureRef"`
		DueDate    *time.Time  `json:"dueDate"`
		Notes      string      `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	tx, err := tc.Engine.Borrow(c.Request.Context(), engine.BorrowInput{
		ResourceID: c.Param("id"),
		Quantity:   in.Quantity,
		Borrower:   in.Borrower.toModel(),
		PictureRef: in.PictureRef,
		DueDate:    in.DueDate,
		Notes:      in.Notes,
		ActorID:    actorID(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Return processes a full or partial return against a single-resource
// transaction.
func (tc *TransactionController) Return(c *gin.Context) {
	var in struct {
		Quantity  int    `json:"quantity" binding:"required"`
		Condition string `json:"condition"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	tx, err := tc.Engine.Return(c.Request.Context(), c.Param("id"), engine.ReturnInput{
		Quantity:  in.Quantity,
		Condition: in.Condition,
		Notes:     in.Notes,
		ActorID:   actorID(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// BorrowMulti lends several resources to one borrower in a single
// transaction document.
func (tc *TransactionController) BorrowMulti(c *gin.Context) {
	var in struct {
		Items []struct {
			ResourceID string     `json:"resourceId" binding:"required"`
			Quantity   int        `json:"quantity" binding:"required"`
			DueDate    *time.Time `json:"dueDate"`
			Notes      string     `json:"notes"`
		} `json:"items" binding:"required"`
		Borrower   borrowerReq `json:"borrower" binding:"required"`
		PictureRef string      `json:"pictureRef"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	items := make([]engine.MultiBorrowItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, engine.MultiBorrowItem{
			ResourceID: it.ResourceID,
			Quantity:   it.Quantity,
			DueDate:    it.DueDate,
			Notes:      it.Notes,
		})
	}
	mtx, err := tc.Engine.BorrowMulti(c.Request.Context(), engine.MultiBorrowInput{
		Items:      items,
		Borrower:   in.Borrower.toModel(),
		PictureRef: in.PictureRef,
		ActorID:    actorID(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, mtx)
}

// ReturnMultiItem returns against one item of a multi-resource transaction.
func (tc *TransactionController) ReturnMultiItem(c *gin.Context) {
	var in struct {
		Quantity  int    `json:"quantity" binding:"required"`
		Condition string `json:"condition"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	mtx, err := tc.Engine.ReturnMultiItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), engine.ReturnInput{
		Quantity:  in.Quantity,
		Condition: in.Condition,
		Notes:     in.Notes,
		ActorID:   actorID(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mtx)
}

// ListTransactions returns single-resource transactions, optionally filtered
// by status or resource.
func (tc *TransactionController) ListTransactions(c *gin.Context) {
	status := c.Query("status")
	resourceID := c.Query("resourceId")
	txs := tc.Store.Transactions()
	out := txs[:0:0]
	for _, tx := range txs {
		if status != "" && string(tx.Status) != status {
			continue
		}
		if resourceID != "" && tx.ResourceID != resourceID {
			continue
		}
		out = append(out, tx)
	}
	c.JSON(http.StatusOK, app.H{"items": out})
}

func (tc *TransactionController) ListMultiTransactions(c *gin.Context) {
	status := c.Query("status")
	mtxs := tc.Store.MultiTransactions()
	out := mtxs[:0:0]
	for _, mtx := range mtxs {
		if status != "" && string(mtx.Status) != status {
			continue
		}
		out = append(out, mtx)
	}
	c.JSON(http.StatusOK, app.H{"items": out})
}

func (tc *TransactionController) ListBorrowers(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"items": tc.Store.Borrowers()})
}
