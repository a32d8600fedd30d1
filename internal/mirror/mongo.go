package mirror

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WorkOrdersCollection = "work_orders"
	ReportsCollection    = "work_order_reports"
)

type MongoMirror struct {
	client     *mongo.Client
	workOrders *mongo.Collection
	reports    *mongo.Collection
}

func NewMongoMirror(ctx context.Context, uri, database string) (*MongoMirror, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoMirror{
		client:     client,
		workOrders: db.Collection(WorkOrdersCollection),
		reports:    db.Collection(ReportsCollection),
	}, nil
}

// ReportDocID is the key of a report under its work order.
func ReportDocID(osNumber string, reportID uint) string {
	return osNumber + "/" + strconv.FormatUint(uint64(reportID), 10)
}

func workOrderDocument(s WorkOrderSummary) bson.M {
	return bson.M{
		"osNumber":      s.OsNumber,
		"lastReportAt":  s.LastReportAt.UTC(),
		"lastUpdatedBy": s.LastUpdatedBy,
		"lastFormType":  s.LastFormType,
		"lastReportId":  s.LastReportID,
	}
}

func reportDocument(r Report) bson.M {
	doc := bson.M{
		"osNumber":  r.OsNumber,
		"reportId":  r.ID,
		"formType":  r.FormType,
		"status":    r.Status,
		"userId":    r.UserID,
		"data":      r.Data,
		"createdAt": r.CreatedAt.UTC(),
		"updatedAt": r.UpdatedAt.UTC(),
	}
	if r.OriginatingFormID != nil {
		doc["originatingFormId"] = *r.OriginatingFormID
	}
	return doc
}

func (m *MongoMirror) UpsertWorkOrder(ctx context.Context, s WorkOrderSummary) error {
	_, err := m.workOrders.UpdateOne(ctx,
		bson.M{"_id": s.OsNumber},
		bson.M{"$set": workOrderDocument(s)},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *MongoMirror) UpsertReport(ctx context.Context, r Report) error {
	_, err := m.reports.UpdateOne(ctx,
		bson.M{"_id": ReportDocID(r.OsNumber, r.ID)},
		bson.M{"$set": reportDocument(r)},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *MongoMirror) DeleteReport(ctx context.Context, osNumber string, reportID uint) error {
	_, err := m.reports.DeleteOne(ctx, bson.M{"_id": ReportDocID(osNumber, reportID)})
	return err
}

func (m *MongoMirror) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
