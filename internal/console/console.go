// Package console реализует текстовый экран кассира поверх ядра терминала:
// выбор товаров, корзина, оформление и история заказов.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	"github.com/vladislavdragonenkov/cafepos/internal/service/history"
)

// ErrUnknownCommand возвращается для нераспознанной команды.
var ErrUnknownCommand = errors.New("unknown command")

// CatalogReader: чтение каталога.
type CatalogReader interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	FindProductIDByName(ctx context.Context, name string) (int64, error)
}

// OrderCompleter оформляет корзину в заказ.
type OrderCompleter interface {
	Complete(ctx context.Context, cart *domain.Cart) (int64, error)
}

// HistoryScreen: экран истории заказов.
type HistoryScreen interface {
	Refresh(ctx context.Context) error
	Snapshot() history.Snapshot
	DeleteOrder(ctx context.Context, orderID int64) error
}

// OrderItemsReader читает позиции заказа с именами товаров.
type OrderItemsReader interface {
	GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItemView, error)
}

// Console держит текущую корзину и выполняет команды кассира.
type Console struct {
	catalog CatalogReader
	writer  OrderCompleter
	view    HistoryScreen
	items   OrderItemsReader
	out     io.Writer
	logger  *log.Entry

	cart *domain.Cart
}

// New создаёт консоль с пустой корзиной.
func New(catalog CatalogReader, writer OrderCompleter, view HistoryScreen, items OrderItemsReader, out io.Writer, logger *log.Entry) *Console {
	if logger == nil {
		logger = log.WithField("component", "console")
	}
	return &Console{
		catalog: catalog,
		writer:  writer,
		view:    view,
		items:   items,
		out:     out,
		logger:  logger,
		cart:    domain.NewCart(),
	}
}

// Cart возвращает текущую корзину.
func (c *Console) Cart() *domain.Cart {
	return c.cart
}

// Run читает команды построчно до quit, EOF или отмены ctx.
// Ошибка команды печатается и не прерывает работу.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		quit, err := c.Execute(ctx, scanner.Text())
		if err != nil {
			c.logger.WithError(err).Debug("console command failed")
			c.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

// Execute выполняет одну команду. quit=true означает выход из консоли.
func (c *Console) Execute(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	// текст после команды без схлопывания внутренних пробелов: имена ищутся точно
	rest := strings.TrimSpace(strings.TrimSpace(line)[len(fields[0]):])

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		c.printHelp()
		return false, nil
	case "categories":
		return false, c.listCategories(ctx)
	case "products":
		return false, c.listProducts(ctx, args)
	case "search":
		return false, c.printProducts(ctx, domain.BySearch(rest))
	case "add":
		return false, c.addProduct(ctx, rest)
	case "add-id":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		return false, c.addProductByID(ctx, id)
	case "inc", "dec", "rm":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		switch cmd {
		case "inc":
			c.cart.Increase(id)
		case "dec":
			c.cart.Decrease(id)
		default:
			c.cart.Remove(id)
		}
		c.printCart()
		return false, nil
	case "cart":
		c.printCart()
		return false, nil
	case "clear":
		c.cart.Clear()
		c.printCart()
		return false, nil
	case "checkout":
		return false, c.checkout(ctx)
	case "history":
		return false, c.printHistory(ctx)
	case "today":
		if err := c.view.Refresh(ctx); err != nil {
			return false, err
		}
		c.printf("today: %s\n", c.view.Snapshot().TodayTotal.StringFixed(2))
		return false, nil
	case "items":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		return false, c.printItems(ctx, id)
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		if err := c.view.DeleteOrder(ctx, id); err != nil {
			return false, err
		}
		c.printf("order %d deleted\n", id)
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s (try help)", ErrUnknownCommand, cmd)
	}
}

func (c *Console) listCategories(ctx context.Context) error {
	categories, err := c.catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCATEGORY")
	for _, category := range categories {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", category.ID, category.Name)
	}
	return tw.Flush()
}

func (c *Console) listProducts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.printProducts(ctx, domain.AllProducts())
	}
	categoryID, err := parseID(args)
	if err != nil {
		return err
	}
	return c.printProducts(ctx, domain.ByCategory(categoryID))
}

func (c *Console) printProducts(ctx context.Context, filter domain.ProductFilter) error {
	products, err := c.catalog.ListProducts(ctx, filter)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE")
	for _, p := range products {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	return tw.Flush()
}

// addProduct ищет товар по точному имени и кладёт его в корзину.
func (c *Console) addProduct(ctx context.Context, name string) error {
	id, err := c.catalog.FindProductIDByName(ctx, name)
	if err != nil {
		return err
	}
	products, err := c.catalog.ListProducts(ctx, domain.BySearch(name))
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID == id {
			c.cart.AddCatalogProduct(p)
			c.printCart()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrProductNotFound, name)
}

// addProductByID кладёт в корзину товар по идентификатору.
// Так продаются и товары, имя которых совпадает с другим.
func (c *Console) addProductByID(ctx context.Context, id int64) error {
	products, err := c.catalog.ListProducts(ctx, domain.AllProducts())
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID == id {
			c.cart.AddCatalogProduct(p)
			c.printCart()
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
}

func (c *Console) checkout(ctx context.Context) error {
	orderID, err := c.writer.Complete(ctx, c.cart)
	if err != nil {
		return err
	}
	c.printf("order %d completed\n", orderID)
	return nil
}

func (c *Console) printCart() {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range c.cart.Lines() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			l.ProductID, l.ProductName, l.UnitPrice.StringFixed(2), l.Quantity, l.Subtotal().StringFixed(2))
	}
	_, _ = fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", c.cart.Total().StringFixed(2))
	_ = tw.Flush()
}

func (c *Console) printHistory(ctx context.Context) error {
	if err := c.view.Refresh(ctx); err != nil {
		return err
	}
	snapshot := c.view.Snapshot()

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ORDER\tCREATED\tTOTAL")
	for _, o := range snapshot.Orders {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", o.ID, o.Timestamp(), o.TotalAmount.StringFixed(2))
	}
	_, _ = fmt.Fprintf(tw, "\tTODAY\t%s\n", snapshot.TodayTotal.StringFixed(2))
	return tw.Flush()
}

func (c *Console) printItems(ctx context.Context, orderID int64) error {
	items, err := c.items.GetOrderItems(ctx, orderID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PRODUCT\tQTY")
	for _, item := range items {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", item.ProductName, item.Quantity)
	}
	return tw.Flush()
}

func (c *Console) printHelp() {
	c.printf(`commands:
  categories              list categories
  products [category-id]  list products, optionally of one category
  search <text>           find products by part of the name
  add <product name>      add product to the cart by exact name
  add-id <product-id>     add product to the cart by id (duplicate names)
  inc|dec|rm <product-id> change cart line
  cart | clear            show or clear the cart
  checkout                complete the order
  history | today         orders newest first, today's total
  items <order-id>        order lines
  delete <order-id>       delete order
  quit
`)
}

func (c *Console) prompt() {
	c.printf("> ")
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one numeric id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
